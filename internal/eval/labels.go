package eval

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Sumatoshi-tech/devdedup/internal/cluster"
	"github.com/Sumatoshi-tech/devdedup/internal/identity"
)

// ErrInvalidLabels indicates a label file that does not match the schema.
var ErrInvalidLabels = errors.New("label file does not match schema")

// labelsSchema is the JSON schema for ground-truth label files: a list of
// clusters, each cluster a list of (name, email) identity objects.
const labelsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["clusters"],
  "properties": {
    "clusters": {
      "type": "array",
      "items": {
        "type": "array",
        "minItems": 1,
        "items": {
          "type": "object",
          "required": ["name", "email"],
          "properties": {
            "name": {"type": "string"},
            "email": {"type": "string"}
          }
        }
      }
    }
  }
}`

// labelFile mirrors the ground-truth JSON layout.
type labelFile struct {
	Clusters [][]labelIdentity `json:"clusters"`
}

type labelIdentity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Labels is a validated ground-truth grouping of raw identities.
type Labels struct {
	clusters [][]identity.Raw
}

// LoadLabels reads and schema-validates a ground-truth label file.
func LoadLabels(path string) (*Labels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label file: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(labelsSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate label file: %w", err)
	}

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLabels, describeSchemaErrors(result))
	}

	var file labelFile

	err = json.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("decode label file: %w", err)
	}

	labels := &Labels{clusters: make([][]identity.Raw, 0, len(file.Clusters))}

	for _, group := range file.Clusters {
		raws := make([]identity.Raw, 0, len(group))
		for _, id := range group {
			raws = append(raws, identity.Raw{Name: id.Name, Email: id.Email})
		}

		labels.clusters = append(labels.clusters, raws)
	}

	return labels, nil
}

// NumClusters returns the number of labeled clusters.
func (l *Labels) NumClusters() int {
	return len(l.clusters)
}

// Partition projects the labels onto the identity pool: members of one
// labeled cluster are unioned; identities absent from the labels remain
// singletons. The number of label entries not present in the pool is
// returned alongside, so callers can report incomplete ground truth.
func (l *Labels) Partition(pool *identity.Pool) (*cluster.Partition, int) {
	uf := cluster.NewUnionFind(pool.Len())
	unknown := 0

	for _, group := range l.clusters {
		anchor := -1

		for _, raw := range group {
			idx, ok := pool.Index(raw)
			if !ok {
				unknown++

				continue
			}

			if anchor < 0 {
				anchor = idx
			} else {
				uf.Union(anchor, idx)
			}
		}
	}

	return cluster.FromUnionFind(uf), unknown
}

func describeSchemaErrors(result *gojsonschema.Result) string {
	descs := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		descs = append(descs, resErr.String())
	}

	return strings.Join(descs, "; ")
}

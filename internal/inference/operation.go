package inference

import (
	"fmt"
	"strings"
	"time"
)

// Operation describes one remote ML operation: its status column and the
// quota-derived batch defaults. Default batch sizes are sized so one
// batch fits inside the default time budget under the provider's
// published requests-per-minute quota.
type Operation struct {
	Name                 string
	StatusColumn         string
	DefaultBatchSize     int
	DefaultBatchDuration time.Duration
}

var catalogue = map[string]Operation{
	"generate_embedding": {
		Name:                 "generate_embedding",
		StatusColumn:         "generate_embedding_status",
		DefaultBatchSize:     10000,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"generate_text": {
		Name:                 "generate_text",
		StatusColumn:         "generate_text_status",
		DefaultBatchSize:     500,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"translate": {
		Name:                 "translate",
		StatusColumn:         "translate_status",
		DefaultBatchSize:     2000,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"understand_text": {
		Name:                 "understand_text",
		StatusColumn:         "understand_text_status",
		DefaultBatchSize:     1000,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"annotate_image": {
		Name:                 "annotate_image",
		StatusColumn:         "annotate_image_status",
		DefaultBatchSize:     500,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"transcribe": {
		Name:                 "transcribe",
		StatusColumn:         "transcribe_status",
		DefaultBatchSize:     100,
		DefaultBatchDuration: 22 * time.Minute,
	},
	"parse_document": {
		Name:                 "parse_document",
		StatusColumn:         "parse_document_status",
		DefaultBatchSize:     200,
		DefaultBatchDuration: 22 * time.Minute,
	},
}

// Lookup resolves an operation by name.
func Lookup(name string) (Operation, error) {
	op, ok := catalogue[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Operation{}, fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// Names returns the catalogue's operation names.
func Names() []string {
	out := make([]string, 0, len(catalogue))
	for name := range catalogue {
		out = append(out, name)
	}
	return out
}

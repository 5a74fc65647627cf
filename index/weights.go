package index

// Field identifies an indexed entry field.
type Field uint8

const (
	FieldTitle Field = iota
	FieldDescription
	FieldTags
	FieldContent

	numFields
)

// String returns the field's lower-case name.
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldDescription:
		return "description"
	case FieldTags:
		return "tags"
	case FieldContent:
		return "content"
	default:
		return "unknown"
	}
}

// Weights controls how much a match in each field contributes to an
// entry's score. A zero weight still indexes the field but its matches add
// nothing to the score.
type Weights struct {
	Title       float64 `json:"title" yaml:"title" mapstructure:"title"`
	Description float64 `json:"description" yaml:"description" mapstructure:"description"`
	Tags        float64 `json:"tags" yaml:"tags" mapstructure:"tags"`
	Content     float64 `json:"content" yaml:"content" mapstructure:"content"`
}

// DefaultWeights favours titles, then descriptions and tags, then body text.
var DefaultWeights = Weights{
	Title:       3,
	Description: 2,
	Tags:        2,
	Content:     1,
}

// IsZero reports whether no weight is set.
func (w Weights) IsZero() bool {
	return w == Weights{}
}

func (w Weights) of(f Field) float64 {
	switch f {
	case FieldTitle:
		return w.Title
	case FieldDescription:
		return w.Description
	case FieldTags:
		return w.Tags
	case FieldContent:
		return w.Content
	default:
		return 0
	}
}

// DefaultLimit is the number of results returned when no limit is given.
const DefaultLimit = 8

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	weights Weights
}

// WithWeights overrides DefaultWeights. An all-zero Weights is ignored.
func WithWeights(w Weights) Option {
	return func(o *buildOptions) {
		if !w.IsZero() {
			o.weights = w
		}
	}
}

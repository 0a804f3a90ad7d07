package llm

// SchemaType is the JSON type of a schema node.
type SchemaType string

// Schema types.
const (
	TypeObject  SchemaType = "object"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of a structured response.
type Schema struct {
	Properties  map[string]*Schema
	Type        SchemaType
	Description string
	Enum        []string
	Required    []string
}

var (
	measurementSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"predicted_sex": {
				Type:        TypeString,
				Description: "The predicted sex, either 'male' or 'female'.",
				Enum:        []string{"male", "female"},
			},
		},
		Required: []string{"predicted_sex"},
	}

	frameSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"prediction": {
				Type:        TypeString,
				Description: "The predicted sex of the chick, either 'Male', 'Female', or 'Unknown'.",
				Enum:        []string{"Male", "Female", "Unknown"},
			},
			"analysis_text": {
				Type:        TypeString,
				Description: "A detailed explanation of the morphological analysis and reasoning for the prediction.",
			},
		},
		Required: []string{"prediction", "analysis_text"},
	}

	alignmentSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"confidence": {
				Type:        TypeNumber,
				Description: "How well the egg is framed for analysis, from 0.0 to 1.0.",
			},
			"is_aligned": {
				Type:        TypeBoolean,
				Description: "Whether a single egg is centred, in focus and fully visible.",
			},
		},
		Required: []string{"confidence", "is_aligned"},
	}

	simulationSchema = &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"prediction": {
				Type:        TypeString,
				Description: "The predicted sex, either 'male' or 'female'.",
				Enum:        []string{"male", "female"},
			},
			"confidence": {
				Type:        TypeNumber,
				Description: "A confidence score for the prediction, from 0.0 to 1.0.",
			},
		},
		Required: []string{"prediction", "confidence"},
	}
)

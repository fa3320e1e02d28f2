package gemini

import "google.golang.org/genai"

func str(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: desc}
}

func strList(desc string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Description: desc, Items: &genai.Schema{Type: genai.TypeString}}
}

func object(required []string, props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

var vocabularySchema = object(
	[]string{"word", "pronunciation", "partOfSpeech", "definition", "localizedDefinition", "mnemonic", "examples"},
	map[string]*genai.Schema{
		"word":                str("the word or short phrase"),
		"pronunciation":       str("IPA or simple phonetic spelling"),
		"partOfSpeech":        str("noun, verb, idiom, ..."),
		"definition":          str("plain-language definition"),
		"localizedDefinition": str("short definition in the learner's native language"),
		"mnemonic":            str("a memorable hook"),
		"examples":            strList("two or three natural example sentences using the word"),
	},
)

var lessonSchema = object(
	[]string{"theme", "vocabulary", "concept", "simulation", "story", "challenge"},
	map[string]*genai.Schema{
		"theme": str("short title of today's lesson"),
		"vocabulary": {
			Type:     genai.TypeArray,
			Items:    vocabularySchema,
			MinItems: genai.Ptr[int64](3),
			MaxItems: genai.Ptr[int64](5),
		},
		"concept": object([]string{"title", "explanation", "analogy", "conversationStarters"}, map[string]*genai.Schema{
			"title":                str("name of the communication concept"),
			"explanation":          str("two to four sentences"),
			"analogy":              str("an everyday analogy"),
			"conversationStarters": strList("three opening lines that apply the concept"),
		}),
		"simulation": object([]string{"setting", "role", "openingLine", "objective"}, map[string]*genai.Schema{
			"setting":     str("where the conversation happens"),
			"role":        str("who the AI persona is"),
			"openingLine": str("the persona's first line"),
			"objective":   str("what the learner should achieve"),
		}),
		"story": object([]string{"title", "content"}, map[string]*genai.Schema{
			"title":   str("story title"),
			"content": str("a short story that uses every vocabulary word"),
		}),
		"challenge": object([]string{"task", "tip"}, map[string]*genai.Schema{
			"task": str("a real-world mission for today"),
			"tip":  str("one practical tip"),
		}),
	},
)

var feedbackSchema = object(
	[]string{"score", "feedback", "suggestion"},
	map[string]*genai.Schema{
		"score": {
			Type:    genai.TypeInteger,
			Minimum: genai.Ptr[float64](1),
			Maximum: genai.Ptr[float64](10),
		},
		"feedback":   str("what went well and what did not, two or three sentences"),
		"suggestion": str("one concrete improvement"),
	},
)

package prompt

// JSON schemas sent with structured generation requests.

const CredibilitySchema = `{
  "type": "object",
  "properties": {
    "score": {"type": "number", "description": "Credibility score between 0.0 and 1.0"},
    "label": {"type": "string", "enum": ["High", "Medium", "Low"]},
    "bias": {"type": "string", "description": "Potential bias, e.g. Commercial, Political, Neutral"},
    "explanation": {"type": "string", "description": "Brief reason for the rating"}
  },
  "required": ["score", "label", "bias", "explanation"]
}`

const QuizSchema = `{
  "type": "object",
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "question": {"type": "string"},
          "options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
          "correct_index": {"type": "integer", "description": "Index of the correct option (0-3)"},
          "explanation": {"type": "string"}
        },
        "required": ["question", "options", "correct_index", "explanation"]
      }
    }
  },
  "required": ["questions"]
}`

const KnowledgeGraphSchema = `{
  "type": "object",
  "properties": {
    "nodes": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "label": {"type": "string"},
          "type": {"type": "string", "description": "Person, Concept, Technology, ..."}
        },
        "required": ["id", "label", "type"]
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "source": {"type": "string"},
          "target": {"type": "string"},
          "relation": {"type": "string", "description": "e.g. CAUSES, IS_A, PART_OF"}
        },
        "required": ["source", "target", "relation"]
      }
    }
  },
  "required": ["nodes", "edges"]
}`

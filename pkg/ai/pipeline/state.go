package pipeline

// State is threaded through every stage. Stages receive it by value and
// return the updated copy; output fields start empty (never nil) so a
// degraded stage still leaves a complete shape behind.
type State struct {
	Topic     string   `json:"topic"`
	Depth     int      `json:"depth"`
	URLs      []string `json:"urls"`
	Files     []string `json:"files"`
	SessionID string   `json:"session_id"`

	Documents   []DocumentRef      `json:"documents"`
	Chunks      []Chunk            `json:"chunks"`
	Summary     string             `json:"summary"`
	Notes       map[string]string  `json:"notes"`
	Credibility []CredibilityScore `json:"credibility"`
	Quiz        []QuizQuestion     `json:"quiz"`
	Graph       GraphData          `json:"graph"`
}

// NotesContent is the Notes key holding the generated study guide.
const NotesContent = "content"

// DocumentRef records one raw document the research stage processed.
type DocumentRef struct {
	Source string `json:"source"`
	Title  string `json:"title"`
}

type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Title  string `json:"title"`
	Index  int    `json:"chunk_index"`
}

type CredibilityScore struct {
	Source      string  `json:"source"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Bias        string  `json:"bias"`
	Explanation string  `json:"explanation"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type GraphEdge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// Input is what a caller supplies to start a run.
type Input struct {
	Topic     string   `json:"topic" validate:"required,max=500"`
	Depth     int      `json:"depth" validate:"min=0,max=10"`
	URLs      []string `json:"urls" validate:"omitempty,dive,url"`
	Files     []string `json:"files"`
	SessionID string   `json:"session_id,omitempty"`
}

// NewState builds the initial state for a run.
func NewState(in Input) State {
	return State{
		Topic:       in.Topic,
		Depth:       in.Depth,
		URLs:        append([]string{}, in.URLs...),
		Files:       append([]string{}, in.Files...),
		SessionID:   in.SessionID,
		Documents:   []DocumentRef{},
		Chunks:      []Chunk{},
		Notes:       map[string]string{},
		Credibility: []CredibilityScore{},
		Quiz:        []QuizQuestion{},
		Graph:       GraphData{Nodes: []GraphNode{}, Edges: []GraphEdge{}},
	}
}

package protocol

// Single-player HTTP bodies. Every response carries Status; "success" gates
// access to the remaining fields, anything else carries Message.

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type StartGameRequest struct {
	Difficulty string `json:"difficulty"`
}

type StartGameResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type QuestionResponse struct {
	Status         string   `json:"status"`
	Message        string   `json:"message,omitempty"`
	Question       string   `json:"question,omitempty"`
	Options        []string `json:"options,omitempty"`
	QuestionNumber int      `json:"question_number,omitempty"`
}

type CheckAnswerRequest struct {
	Answer string `json:"answer"`
}

type CheckAnswerResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

package models

// TuneResponse is the success payload: the fine-tuning job handle and the
// identifier of the resulting model.
type TuneResponse struct {
	Message string `json:"message"`
	JobId   string `json:"job_id"`
	ModelId string `json:"model_id"`
	Records int    `json:"records"`
}

// ErrorResponse carries a failure message and its category so callers can
// tell bad input from a broken external dependency.
type ErrorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

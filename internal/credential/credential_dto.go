package credential

type ConfigureRequest struct {
	AppPassword string `json:"appPassword"`
}

type StatusResponse struct {
	Email            string `json:"email"`
	Status           string `json:"status"`
	Message          string `json:"message"`
	Configured       bool   `json:"configured"`
	HasValidPassword bool   `json:"hasValidPassword"`
	Provider         string `json:"provider"`
	SMTPHost         string `json:"smtpHost"`
	SMTPPort         int    `json:"smtpPort"`
}

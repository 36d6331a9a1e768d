package dto

type TerminalRequest struct {
	NumeroTerminal int `json:"numeroTerminal" validate:"required,min=1,max=999"`
}

type TerminalResponse struct {
	NumeroTerminal int `json:"numeroTerminal"`
}

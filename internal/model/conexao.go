package model

import "time"

// StatusConexao describes one link: terminal ↔ agent or agent ↔ cloud API.
type StatusConexao struct {
	Nome              string   `json:"name"`
	Conectado         bool     `json:"connected"`
	Mensagem          string   `json:"message,omitempty"`
	StatusCode        int      `json:"statusCode,omitempty"`
	UltimaVerificacao Instante `json:"lastCheck"`
}

// EstadoConexao is derived fresh from the latest poll and never persisted.
type EstadoConexao struct {
	Agente    StatusConexao `json:"agent"`
	API       StatusConexao `json:"api"`
	Timestamp Instante      `json:"timestamp"`
}

// EstadoDesconectado is the fallback used when the status poll itself fails:
// both links are considered down.
func EstadoDesconectado(agora time.Time, motivo string) EstadoConexao {
	ts := NovoInstante(agora)
	return EstadoConexao{
		Agente: StatusConexao{
			Nome:              "Agente PDV",
			Conectado:         false,
			Mensagem:          motivo,
			UltimaVerificacao: ts,
		},
		API: StatusConexao{
			Nome:              "API Solis",
			Conectado:         false,
			Mensagem:          "Desconhecido (agente offline)",
			UltimaVerificacao: ts,
		},
		Timestamp: ts,
	}
}

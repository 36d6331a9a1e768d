package handler

import (
	"net/http"
	"time"

	"solispdv/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS middleware.
	CheckOrigin: func(*http.Request) bool { return true },
}

// StatusStream godoc
// @Summary Estado das conexões em tempo real (WebSocket)
// @Description Envia o estado atual ao conectar e a cada nova verificação do monitor.
// @Tags status
// @Router /v1/status/ws [get]
func (h *StatusHandler) StatusStream(intervalo time.Duration) gin.HandlerFunc {
	if intervalo <= 0 {
		intervalo = time.Second
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug().Err(err).Msg("status ws: upgrade failed")
			return
		}
		defer conn.Close()

		// Reader: only pongs and close frames are expected.
		done := make(chan struct{})
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		send := func(estado model.EstadoConexao) bool {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			return conn.WriteJSON(estado) == nil
		}

		ultimo := h.conexao.Atual()
		if !send(ultimo) {
			return
		}

		verificar := time.NewTicker(intervalo)
		defer verificar.Stop()
		ping := time.NewTicker(wsPingEvery)
		defer ping.Stop()

		for {
			select {
			case <-done:
				return
			case <-c.Request.Context().Done():
				return
			case <-verificar.C:
				atual := h.conexao.Atual()
				if atual.Timestamp.Equal(ultimo.Timestamp.Time) {
					continue
				}
				ultimo = atual
				if !send(atual) {
					return
				}
			case <-ping.C:
				_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

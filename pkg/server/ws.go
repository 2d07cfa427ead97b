package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	log "github.com/sirupsen/logrus"

	"daybook/pkg/chat"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,

	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleChatSocket runs a chat session over one websocket. The read loop
// serializes sends naturally: the next frame is not read until the current
// one is answered.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)

	if err != nil {
		log.Errorf("websocket upgrade: %v", err)
		return
	}

	defer conn.Close()

	conversationID := ""

	for {
		var frame SocketFrame

		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warnf("websocket read: %v", err)
			}

			return
		}

		if frame.ConversationID != "" {
			conversationID = frame.ConversationID
		}

		if frame.Reset {
			fresh, err := s.service.Reset(r.Context(), conversationID)

			if err != nil {
				s.writeSocketError(conn, err)
				continue
			}

			conversationID = fresh

			if err := conn.WriteJSON(ResetResponse{ConversationID: fresh}); err != nil {
				log.Warnf("websocket write: %v", err)
				return
			}

			continue
		}

		if strings.TrimSpace(frame.Message) == "" {
			s.writeSocketError(conn, errors.New("missing message"))
			continue
		}

		reply, err := s.service.Send(r.Context(), chat.SendInput{
			ConversationID: conversationID,
			Text:           frame.Message,

			IncludeCurrent: frame.IncludeCurrent,
			Current:        frame.Current,
		})

		if err != nil {
			s.writeSocketError(conn, err)
			continue
		}

		conversationID = reply.ConversationID

		if err := conn.WriteJSON(toChatResponse(reply)); err != nil {
			log.Warnf("websocket write: %v", err)
			return
		}
	}
}

func (s *Server) writeSocketError(conn *websocket.Conn, err error) {
	if err := conn.WriteJSON(ErrorResponse{Error: err.Error()}); err != nil {
		log.Warnf("websocket write: %v", err)
	}
}

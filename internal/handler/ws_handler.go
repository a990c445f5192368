package handler

import (
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/recruit-intake/internal/handler/dto"
	"github.com/yourusername/recruit-intake/internal/middleware"
	"github.com/yourusername/recruit-intake/internal/service/intake"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Клиент ничего не присылает, кроме служебных кадров
	maxMessageSize = 512
)

// WSHandler транслирует состояние анкеты в открытый просмотр.
// Соединение и есть время жизни просмотра: при его закрытии опрос статуса останавливается.
type WSHandler struct {
	registry *intake.Registry
	upgrader gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// Соединения принимаются с того же хоста или из allowedOrigins.
func NewWSHandler(registry *intake.Registry, allowedOrigins []string) *WSHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &WSHandler{
		registry: registry,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
					return true
				}
				log.Printf("[WSHandler] Отклонен origin: %s", origin)
				return false
			},
		},
	}
}

// HandleIntake открывает живой просмотр анкеты посетителя
// GET /ws/intake
func (h *WSHandler) HandleIntake(c *gin.Context) {
	visitorID := c.GetString(middleware.ContextKeyVisitorID)
	wf, ok := h.registry.Get(visitorID)
	if !ok {
		// Смотреть нечего: анкета еще не создана или уже удалена
		c.JSON(http.StatusNotFound, gin.H{"error": "intake not found", "error_type": "not_found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ клиенту
		log.Printf("[WSHandler] Ошибка upgrade для посетителя %s: %v", visitorID, err)
		return
	}

	// Хранится только последний снимок: промежуточные состояния клиенту не нужны
	updates := make(chan intake.Snapshot, 1)
	stop := wf.Watch(func(s intake.Snapshot) {
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})

	closed := make(chan struct{})
	go h.readPump(conn, closed)
	h.writePump(conn, wf.Snapshot(), updates, closed)

	stop()
	conn.Close()
	log.Printf("[WSHandler] Просмотр анкеты посетителя %s закрыт", visitorID)
}

// readPump читает служебные кадры до закрытия соединения
func (h *WSHandler) readPump(conn *gorillaws.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure) {
				log.Printf("[WSHandler] Ошибка чтения: %v", err)
			}
			return
		}
	}
}

// writePump отправляет начальный снимок, затем каждое изменение и ping
func (h *WSHandler) writePump(conn *gorillaws.Conn, initial intake.Snapshot, updates <-chan intake.Snapshot, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := func(s intake.Snapshot) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(dto.NewSnapshotResponse(s)); err != nil {
			log.Printf("[WSHandler] Ошибка записи: %v", err)
			return false
		}
		return true
	}

	if !send(initial) {
		return
	}
	for {
		select {
		case s := <-updates:
			if !send(s) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gorillaws.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

package ticker

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"cryptograph/internal/consts"
	"cryptograph/internal/service"
	"cryptograph/pkg/logger"
)

// 推送给客户端的消息格式
type priceUpdate struct {
	Type   string  `json:"type"` // price_update
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	At     int64   `json:"at"`
}

type ClientConn struct {
	conn *websocket.Conn
	send chan []byte // 异步发送通道
}

// Handler 把支持币种的实时价格广播给所有连上来的前端。
// 价格走MarketService的缓存，广播频率再高也不会把交易所打挂。
type Handler struct {
	service  *service.MarketService
	mu       sync.Mutex
	clients  map[*ClientConn]struct{}
	upgrader websocket.Upgrader
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func NewHandler(s *service.MarketService) *Handler {
	h := &Handler{
		service: s,
		clients: make(map[*ClientConn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // 允许跨域
		},
		interval: 5 * time.Second,
		stop:     make(chan struct{}),
	}
	go h.broadcastLoop()
	return h
}

// ServeWS 只负责连接的建立和收尾
func (h *Handler) ServeWS(ctx *gin.Context) {
	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.Pair("err", err.Error()))
		return
	}
	client := &ClientConn{conn: conn, send: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Handler) Close() {
	h.once.Do(func() { close(h.stop) })
}

func (h *Handler) broadcastLoop() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.Lock()
			n := len(h.clients)
			h.mu.Unlock()
			if n == 0 {
				continue
			}
			h.broadcastPrices()
		}
	}
}

func (h *Handler) broadcastPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()
	for _, coin := range consts.SupportedCoins {
		quote, err := h.service.CurrentPrice(ctx, coin)
		if err != nil {
			logger.Warn("ticker price lookup failed", logger.Pair("coin", coin), logger.Pair("err", err.Error()))
			continue
		}
		data, err := json.Marshal(priceUpdate{
			Type:   "price_update",
			Symbol: quote.Symbol,
			Price:  quote.Price,
			At:     quote.Timestamp.Unix(),
		})
		if err != nil {
			continue
		}
		h.mu.Lock()
		for client := range h.clients {
			select {
			case client.send <- data:
			default:
				// 发送队列满说明客户端卡死，直接踢掉
				delete(h.clients, client)
				close(client.send)
			}
		}
		h.mu.Unlock()
	}
}

func (h *Handler) writePump(client *ClientConn) {
	defer client.conn.Close()
	for msg := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *Handler) readPump(client *ClientConn) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			return
		}
	}
}

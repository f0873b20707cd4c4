package feed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quantsim/pkg/common"
	"quantsim/pkg/pricing"
	"quantsim/pkg/utility"
	"quantsim/pkg/utility/fixed"
)

// barMessage is the wire format of one streamed daily bar.
type barMessage struct {
	Ticker    string    `json:"ticker"`
	TimeStamp time.Time `json:"ts"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Feed streams bars from a websocket endpoint into an in-memory provider so
// a live session queries its oracle the same way a backtest does.
type Feed struct {
	url    string
	store  *pricing.StaticProvider
	logger *zap.Logger

	conn      *websocket.Conn
	ctx       context.Context
	ctxCancel context.CancelFunc
}

func NewFeed(url string, store *pricing.StaticProvider, logger *zap.Logger) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	return &Feed{
		url:       url,
		store:     store,
		logger:    logger,
		ctx:       ctx,
		ctxCancel: cancel,
	}
}

func (f *Feed) Start() error {
	conn, _, err := websocket.DefaultDialer.Dial(f.url, nil)
	if err != nil {
		return err
	}
	f.conn = conn
	go f.read()
	return nil
}

func (f *Feed) Stop() {
	f.ctxCancel()
	if f.conn != nil {
		_ = f.conn.Close()
	}
}

func (f *Feed) read() {
	for {
		select {
		case <-f.ctx.Done():
			return
		default:
			_, message, err := f.conn.ReadMessage()
			if err != nil {
				f.logger.Warn("cannot read data", zap.Error(err))
				time.Sleep(1 * time.Second) // prevent tight loop
				return
			}

			var msg barMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				f.logger.Warn("unmarshal failed",
					zap.ByteString("raw", message),
					zap.Error(err))
				continue
			}

			f.store.AddBar(common.Bar{
				Ticker:      common.Ticker(msg.Ticker),
				Source:      "feed",
				ExecutionId: utility.GetExecutionID(),
				TraceID:     utility.CreateTraceID(),
				TimeStamp:   msg.TimeStamp,
				Period:      24 * time.Hour,
				Open:        fixed.FromFloat64(msg.Open),
				High:        fixed.FromFloat64(msg.High),
				Low:         fixed.FromFloat64(msg.Low),
				Close:       fixed.FromFloat64(msg.Close),
				Volume:      fixed.FromFloat64(msg.Volume),
			})

			f.logger.Debug("bar",
				zap.String("ticker", msg.Ticker),
				zap.Time("ts", msg.TimeStamp))
		}
	}
}

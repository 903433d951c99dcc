package clients

import (
	"time"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/jimlawless/whereami"
	amqp "github.com/rabbitmq/amqp091-go"
)

const rabbitDialTimeout = 10 * time.Second

// NewRabbitMQConn открывает соединение с брокером по cfg.URL.
func NewRabbitMQConn(cfg *cfg.RabbitMQCfg) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(cfg.URL, amqp.Config{
		Dial: amqp.DefaultDial(rabbitDialTimeout),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return conn, nil
}

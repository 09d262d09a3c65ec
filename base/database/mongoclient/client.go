package mongoclient

import (
	"crypto/tls"
	"runtime"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketengine/base/ctx"
	"github.com/x-xyz/marketengine/base/log"
)

const (
	socketTimeout = 60 * time.Second
	pingTimeout   = 10 * time.Second
)

// Config is read from the `mongo` config section
type Config struct {
	URI                string  `mapstructure:"uri"`
	AuthDBName         string  `mapstructure:"authDBName"`
	DBName             string  `mapstructure:"dbName"`
	SSL                bool    `mapstructure:"ssl"`
	Majority           bool    `mapstructure:"majority"`
	PoolSizeMultiplier float64 `mapstructure:"poolSizeMultiplier"`
}

// Client wraps mongo.Client bound to one database
type Client struct {
	DbName string
	*mongo.Client
}

// Collection returns the named collection of the bound database
func (cli *Client) Collection(name string) *mongo.Collection {
	return cli.Database(cli.DbName).Collection(name)
}

// MustConnect panics if the database is unreachable
func MustConnect(c ctx.Ctx, cfg Config) *Client {
	cli, err := Connect(c, cfg)
	if err != nil {
		c.WithFields(log.Fields{"mongoURI": cfg.URI, "err": err}).Panic("fail to dial Mongo")
	}
	return cli
}

func Connect(c ctx.Ctx, cfg Config) (*Client, error) {
	setting, err := connstring.Parse(cfg.URI)
	if err != nil {
		return nil, xerrors.Errorf("parse mongo uri: %w", err)
	}
	logger := c.WithFields(log.Fields{"mongoHosts": setting.Hosts, "db": cfg.DBName})

	opts := options.Client().ApplyURI(cfg.URI).SetSocketTimeout(socketTimeout).SetRetryWrites(true)

	// auth source falls back to AuthDBName when the uri leaves it out
	if setting.Username != "" && setting.AuthSource == "" {
		opts.SetAuth(options.Credential{
			AuthMechanism:           setting.AuthMechanism,
			AuthMechanismProperties: setting.AuthMechanismProperties,
			Username:                setting.Username,
			Password:                setting.Password,
			PasswordSet:             setting.PasswordSet,
			AuthSource:              cfg.AuthDBName,
		})
	}

	if size := poolSize(cfg.PoolSizeMultiplier, len(setting.Hosts)); size > 0 {
		opts.SetMinPoolSize(uint64(size / 4))
		opts.SetMaxPoolSize(uint64(size))
		logger.WithField("poolSize", size).Info("mongo driver pool size")
	}

	if cfg.SSL {
		opts.SetTLSConfig(&tls.Config{})
	}
	if cfg.Majority {
		opts.SetWriteConcern(writeconcern.New(writeconcern.WMajority()))
	}

	client, err := mongo.Connect(c, opts)
	if err != nil {
		logger.WithField("err", err).Error("fail to connect mongo db")
		return nil, err
	}

	pc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	if _, err := client.Database(cfg.DBName).ListCollectionNames(pc, bson.D{}); err != nil {
		logger.WithField("err", err).Error("fail to test mongo db")
		return nil, err
	}

	logger.Info("mongo connected")
	return &Client{Client: client, DbName: cfg.DBName}, nil
}

// poolSize spreads the total pool over every host since each host keeps
// its own pool
func poolSize(multiplier float64, hosts int) int {
	if multiplier <= 0 || hosts == 0 {
		return 0
	}
	total := int(float64(runtime.NumCPU()) * multiplier)
	return (total + hosts - 1) / hosts
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"time"

	"github.com/ghodss/yaml"

	"github.com/redisq/redisq/redis"
	"github.com/redisq/redisq/redisconn"
)

// Config is the flood run description. Flags override file values.
type Config struct {
	Addr     string `yaml:"addr"`
	DB       int    `yaml:"db"`
	Password string `yaml:"password"`
	// Window is how many requests are kept in flight before draining.
	Window int `yaml:"window"`
	// Requests is the total number of SETs to issue.
	Requests int `yaml:"requests"`
	// KeyPrefix for generated keys. Keys are deleted afterwards.
	KeyPrefix string `yaml:"keyPrefix"`
}

var conf = flag.String("conf", "", "path to yaml config")
var addr = flag.String("addr", "", "redis address (overrides config)")
var window = flag.Int("window", 0, "pipeline window (overrides config)")
var requests = flag.Int("n", 0, "total requests (overrides config)")

func main() {
	flag.Parse()
	cfg := Config{
		Addr:      "127.0.0.1:6379",
		Window:    128,
		Requests:  100000,
		KeyPrefix: "pipeflood",
	}
	if *conf != "" {
		raw, err := ioutil.ReadFile(*conf)
		if err != nil {
			log.Fatal(err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			log.Fatal(err)
		}
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *window > 0 {
		cfg.Window = *window
	}
	if *requests > 0 {
		cfg.Requests = *requests
	}

	conn, err := redisconn.Connect(context.Background(), cfg.Addr, redisconn.Opts{
		DB:       cfg.DB,
		Password: cfg.Password,
		Logger:   redisconn.NoopLogger{},
	})
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	var failed int
	cb := redis.FuncFuture(func(res interface{}, _ uint64) {
		if redis.AsError(res) != nil {
			failed++
		}
	})

	start := time.Now()
	for i := 0; i < cfg.Requests; i++ {
		key := fmt.Sprintf("%s:%d", cfg.KeyPrefix, i)
		conn.Send(redis.Req("SET", key, i), cb, uint64(i))
		if conn.PendingCount() >= cfg.Window {
			if err := conn.WaitAll(); err != nil {
				log.Fatal(err)
			}
		}
	}
	if err := conn.WaitAll(); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start)

	fmt.Printf("%d requests in %v (%.0f req/s), %d failed\n",
		cfg.Requests, elapsed, float64(cfg.Requests)/elapsed.Seconds(), failed)

	cleanup(conn, cfg)
}

func cleanup(conn *redisconn.Connection, cfg Config) {
	iter := conn.Scanner(redis.ScanOpts{Match: cfg.KeyPrefix + ":*", Count: 1000})
	for {
		keys, err := iter.Next()
		if err != nil {
			if err == redis.ScanEOF {
				return
			}
			log.Fatal(err)
		}
		for _, key := range keys {
			conn.Send(redis.Req("DEL", key), nil, 0)
		}
		if err := conn.WaitAll(); err != nil {
			log.Fatal(err)
		}
	}
}

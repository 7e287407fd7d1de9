package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/starpaykids/allowance/internal/config"
	"github.com/starpaykids/allowance/internal/services/db"
	"github.com/starpaykids/allowance/internal/services/ledger"
	"github.com/starpaykids/allowance/internal/services/wallet"
	"github.com/starpaykids/allowance/internal/services/webhook"
	"github.com/starpaykids/allowance/internal/sessions"
	"github.com/starpaykids/allowance/internal/storage"
	"github.com/starpaykids/allowance/pkg/allowance"
	"github.com/starpaykids/allowance/pkg/queue"
	"github.com/starpaykids/allowance/pkg/router"
)

func main() {
	log.Default().Println("launching allowance service...")

	env := flag.String("env", "", "path to .env file")

	port := flag.Int("port", 3000, "port to listen on")

	path := flag.String("path", "", "path to the data directory (default: home directory)")

	mock := flag.Bool("mock", false, "use the demo gateway instead of the contract-state store")

	notify := flag.Bool("notify", false, "notify the webhook channel about sent allowances")

	flag.Parse()

	ctx := context.Background()

	conf, err := config.New(ctx, *env)
	if err != nil {
		log.Fatal(err)
	}

	if conf.SentryURL != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn: conf.SentryURL,
			// Set TracesSampleRate to 1.0 to capture 100%
			// of transactions for performance monitoring.
			// We recommend adjusting this value in production,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		// Flush buffered events before the program terminates.
		defer sentry.Flush(2 * time.Second)
	}

	basePath := *path
	if basePath == "" {
		basePath = fmt.Sprintf("%s/.allowance", storage.GetUserHomeDir())
	}

	log.Default().Println("opening session slot...")

	slot, err := sessions.NewFileSlot(basePath)
	if err != nil {
		log.Fatal(err)
	}

	log.Default().Println("connecting to wallet bridge: ", conf.WalletBridgeURL)

	w := wallet.NewBridgeService(conf.WalletBridgeURL)

	clock := allowance.SystemClock{}

	var gateway allowance.Gateway
	if *mock {
		log.Default().Println("running against the demo gateway...")

		gateway = ledger.NewMockService(clock, rand.New(rand.NewSource(time.Now().UnixNano())))
	} else {
		log.Default().Println("starting contract-state store for: ", conf.ContractID)

		var d *db.DB
		switch conf.DBDriver {
		case "postgres":
			d, err = db.NewPostgresDB(conf.DBUser, conf.DBPassword, conf.DBName, conf.DBHost, conf.ContractID)
		default:
			d, err = db.NewDB(basePath, conf.ContractID)
		}
		if err != nil {
			log.Fatal(err)
		}
		defer d.Close()

		gateway = ledger.NewStoreService(d, clock)
	}

	wm := webhook.NewMessager(conf.DiscordURL, conf.ContractID, *notify && conf.DiscordURL != "")

	quitAck := make(chan error)

	log.Default().Println("starting task queue...")

	q := queue.NewService(3, ctx, wm)
	defer q.Close()

	go func() {
		quitAck <- q.Start()
	}()

	log.Default().Println("starting api service...")

	api := router.NewServer(conf.APIKEY, w, slot, gateway, q, wm)

	go func() {
		quitAck <- api.Start(*port)
	}()

	log.Default().Println("listening on port: ", *port)

	for err := range quitAck {
		if err != nil {
			log.Fatal(err)
		}
	}
}

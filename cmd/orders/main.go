package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderstore/internal/app"
	"github.com/vladislavdragonenkov/orderstore/internal/domain"
	"github.com/vladislavdragonenkov/orderstore/internal/messaging/kafka"
)

const defaultTimeout = 30 * time.Second

const usage = `usage: orders <command> [flags]

commands:
  list   [-kind orders|customers|products]  print all records as JSON
  get    -id ID                             print one order as JSON
  watch  [-brokers LIST] [-from-beginning]  stream order events from Kafka

storage flags (list, get): -driver memory|sqlite|postgres -dsn DSN
`

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.WarnLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.LookupEnv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	if len(args) == 0 {
		return fmt.Errorf("command is required\n%s", usage)
	}

	switch args[0] {
	case "list":
		return runList(ctx, args[1:], stdout, lookup)
	case "get":
		return runGet(ctx, args[1:], stdout, lookup)
	case "watch":
		return runWatch(ctx, args[1:], stdout, lookup)
	case "help", "-h", "--help":
		_, _ = io.WriteString(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

type storageFlags struct {
	driver string
	dsn    string
}

func (s *storageFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&s.driver, "driver", "", "storage driver: memory|sqlite|postgres (fallback: OMS_STORAGE_DRIVER)")
	fs.StringVar(&s.dsn, "dsn", "", "SQLite path or PostgreSQL DSN (fallback: OMS_SQLITE_PATH / OMS_POSTGRES_DSN)")
}

// config собирает app.Config: флаги важнее переменных окружения.
// Миграции не применяются: команды только читают хранилище.
func (s *storageFlags) config(lookup func(string) (string, bool)) app.Config {
	cfg := app.DefaultConfig()
	cfg.AutoMigrate = false
	cfg.StorageDriver = firstNonEmpty(s.driver, envValue(lookup, "OMS_STORAGE_DRIVER"), app.StorageDriverMemory)
	cfg.SQLitePath = envValue(lookup, "OMS_SQLITE_PATH")
	cfg.PostgresDSN = envValue(lookup, "OMS_POSTGRES_DSN")

	if dsn := strings.TrimSpace(s.dsn); dsn != "" {
		switch strings.ToLower(cfg.StorageDriver) {
		case app.StorageDriverSQLite:
			cfg.SQLitePath = dsn
		case app.StorageDriverPostgres:
			cfg.PostgresDSN = dsn
		}
	}
	return cfg
}

func (s *storageFlags) open(ctx context.Context, lookup func(string) (string, bool)) (*app.Repositories, error) {
	return app.OpenRepositories(ctx, s.config(lookup), log.WithField("component", "orders-cli"), nil)
}

func runList(ctx context.Context, args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	var (
		storage storageFlags
		kind    string
	)
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	storage.register(fs)
	fs.StringVar(&kind, "kind", "orders", "what to list: orders|customers|products")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	repos, err := storage.open(ctx, lookup)
	if err != nil {
		return err
	}
	defer repos.Close()

	var result any
	switch kind {
	case "orders":
		orders, err := repos.Orders.FindAll(ctx)
		if err != nil {
			return err
		}
		views := make([]orderView, 0, len(orders))
		for _, o := range orders {
			views = append(views, newOrderView(o))
		}
		result = views
	case "customers":
		result, err = repos.Customers.FindAll(ctx)
	case "products":
		result, err = repos.Products.FindAll(ctx)
	default:
		return fmt.Errorf("unsupported kind %q (use orders|customers|products)", kind)
	}
	if err != nil {
		return err
	}

	return writeJSON(stdout, result)
}

func runGet(ctx context.Context, args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	var (
		storage storageFlags
		id      string
	)
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	storage.register(fs)
	fs.StringVar(&id, "id", "", "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("-id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	repos, err := storage.open(ctx, lookup)
	if err != nil {
		return err
	}
	defer repos.Close()

	order, err := repos.Orders.Find(ctx, id)
	if err != nil {
		return err
	}
	return writeJSON(stdout, newOrderView(order))
}

func runWatch(ctx context.Context, args []string, stdout io.Writer, lookup func(string) (string, bool)) error {
	var (
		brokers       string
		group         string
		fromBeginning bool
	)
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.StringVar(&brokers, "brokers", "", "comma separated Kafka brokers (fallback: KAFKA_BROKERS)")
	fs.StringVar(&group, "group", "", "consumer group (default: random, so every run sees all new events)")
	fs.BoolVar(&fromBeginning, "from-beginning", false, "read the topic from the oldest offset")
	if err := fs.Parse(args); err != nil {
		return err
	}

	brokerList := kafka.ParseBrokers(firstNonEmpty(brokers, envValue(lookup, "KAFKA_BROKERS")))
	if len(brokerList) == 0 {
		return errors.New("KAFKA_BROKERS (or -brokers) is required")
	}
	if group == "" {
		group = "orders-cli-" + uuid.NewString()
	}

	// Партиции обрабатываются параллельно, вывод сериализуется.
	var mu sync.Mutex
	encoder := json.NewEncoder(stdout)
	consumer, err := kafka.NewOrderEventConsumer(kafka.ConsumerConfig{
		Brokers:    brokerList,
		GroupID:    group,
		FromOldest: fromBeginning,
	}, func(_ context.Context, event domain.OrderEvent) error {
		mu.Lock()
		defer mu.Unlock()
		return encoder.Encode(event)
	})
	if err != nil {
		return err
	}

	return consumer.Run(ctx)
}

// orderView — JSON-представление заказа с вычисленной суммой.
type orderView struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customer_id"`
	Total      int64              `json:"total"`
	Items      []domain.OrderItem `json:"items"`
}

func newOrderView(o domain.Order) orderView {
	items := o.Items
	if items == nil {
		items = []domain.OrderItem{}
	}
	return orderView{ID: o.ID, CustomerID: o.CustomerID, Total: o.Total(), Items: items}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envValue(lookup func(string) (string, bool), key string) string {
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Command checkout runs the order/quote submission pipeline headlessly:
// resolve the backend environment, validate the form file, submit, then
// poll payment status and print the per-provider links.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/nzmint/bullion-checkout/internal/checkout"
	"github.com/nzmint/bullion-checkout/internal/checkout/journal"
	journalsqlite "github.com/nzmint/bullion-checkout/internal/checkout/journal/sqlite"
	"github.com/nzmint/bullion-checkout/internal/config"
	"github.com/nzmint/bullion-checkout/internal/environ"
	"github.com/nzmint/bullion-checkout/internal/pkg/telemetry"
	"github.com/nzmint/bullion-checkout/internal/session"
)

// formFile is the on-disk form format. Keys match the backend's wire
// field names so a captured payload can be replayed as-is.
type formFile struct {
	FirstName string `json:"first_name_order"`
	LastName  string `json:"last_name_order"`
	Email     string `json:"email_order"`
	Phone     string `json:"phone_order"`

	ProductName string `json:"product_name_full"`
	ProductURL  string `json:"product_url"`
	SKU         string `json:"sku"`
	ZohoID      string `json:"zoho_id"`
	Quantity    string `json:"quantity"`

	PriceNZD          string `json:"price_nzd"`
	UnitPriceNZD      string `json:"unit_price_nzd"`
	TotalUnitPriceNZD string `json:"total_unit_price_nzd"`
	UnitGST           string `json:"unit_gst"`
	TotalGST          string `json:"total_gst"`
	TotalPrice        string `json:"total_price"`
	TotalAmount       string `json:"total_amount"`
	ShippingFee       string `json:"shippingfee"`

	Delivery    string `json:"delivery"`
	PayInPerson string `json:"pay_in_person"`
	Address     string `json:"address"`
	Message     string `json:"message"`
	PickupDate  string `json:"date_picker_order"`
	PickupTime  string `json:"time_picker_order"`

	SupplierStatus    string `json:"supplier_status"`
	SupplierName      string `json:"supplier_name"`
	AutoSupplier      string `json:"auto_supplier"`
	SupplierItemID    string `json:"supplier_item_id"`
	SupplierConfirmed bool   `json:"supplier_confirmed"`

	QuoteItems []checkout.QuoteItem `json:"quote_items"`
}

func (f formFile) toForm() checkout.Form {
	return checkout.Form{
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		Email:             f.Email,
		Phone:             f.Phone,
		ProductName:       f.ProductName,
		ProductURL:        f.ProductURL,
		SKU:               f.SKU,
		ZohoID:            f.ZohoID,
		Quantity:          f.Quantity,
		PriceNZD:          f.PriceNZD,
		UnitPriceNZD:      f.UnitPriceNZD,
		TotalUnitPriceNZD: f.TotalUnitPriceNZD,
		UnitGST:           f.UnitGST,
		TotalGST:          f.TotalGST,
		TotalPrice:        f.TotalPrice,
		TotalAmount:       f.TotalAmount,
		ShippingFee:       f.ShippingFee,
		Delivery:          f.Delivery,
		PayInPerson:       f.PayInPerson,
		Address:           f.Address,
		Message:           f.Message,
		PickupDate:        f.PickupDate,
		PickupTime:        f.PickupTime,
		SupplierStatus:    f.SupplierStatus,
		SupplierName:      f.SupplierName,
		AutoSupplier:      f.AutoSupplier,
		SupplierItemID:    f.SupplierItemID,
		SupplierConfirmed: f.SupplierConfirmed,
	}
}

// logListener mirrors submitter state transitions into the log, the
// CLI's stand-in for the order page's button states.
type logListener struct{}

func (logListener) StateChanged(state checkout.State) {
	slog.Info("submission state", "state", state)
}

// methodLogListener mirrors per-provider payment-button transitions.
type methodLogListener struct{}

func (methodLogListener) MethodChanged(provider checkout.Provider, state checkout.MethodState, url string) {
	if url != "" {
		slog.Info("payment method", "provider", provider, "state", state, "url", url)
		return
	}
	slog.Info("payment method", "provider", provider, "state", state)
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	formPath := flag.String("form", "", "path to the JSON form file")
	quote := flag.Bool("quote", false, "submit a quote request instead of an order")
	hostname := flag.String("hostname", getEnv("CHECKOUT_HOSTNAME", ""), "page hostname used for environment selection")
	flag.Parse()

	telemetry.InitLogger(slog.LevelInfo, true)

	if *formPath == "" {
		log.Fatal("-form is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	raw, err := os.ReadFile(*formPath)
	if err != nil {
		log.Fatalf("read form file: %v", err)
	}
	var file formFile
	if err := json.Unmarshal(raw, &file); err != nil {
		log.Fatalf("parse form file: %v", err)
	}

	ctx := context.Background()

	baseURL := environ.NewResolver(cfg.Environment, nil).Resolve(ctx, *hostname)
	slog.Info("resolved backend", "base_url", baseURL, "hostname", *hostname)

	var store session.Store
	if cfg.Session.RedisAddr != "" {
		redisStore := session.NewRedis(cfg.Session.RedisAddr, "checkout")
		defer redisStore.Close()
		store = redisStore
	} else {
		store = session.NewMemory()
	}

	var journalRepo journal.Repository
	if cfg.Journal.Path != "" {
		repo, err := journalsqlite.Open(cfg.Journal.Path)
		if err != nil {
			log.Fatalf("open journal: %v", err)
		}
		defer repo.Close()
		journalRepo = repo
	}

	submitter := checkout.NewSubmitter(baseURL, nil, store,
		checkout.WithTTL(cfg.Session.TTL()),
		checkout.WithListener(logListener{}),
		checkout.WithJournal(journalRepo),
	)

	var receipt *checkout.Receipt
	if *quote {
		receipt, err = submitter.SubmitQuote(ctx, file.toForm(), file.QuoteItems)
	} else {
		receipt, err = submitter.SubmitOrder(ctx, file.toForm())
	}

	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		for _, fe := range verr.Result.FieldErrors {
			fmt.Fprintf(os.Stderr, "invalid field %s: %s\n", fe.Field, fe.Message)
		}
		if verr.Result.NoProduct {
			fmt.Fprintln(os.Stderr, "no product selected")
		}
		if verr.Result.SupplierUnconfirmed {
			fmt.Fprintln(os.Stderr, "supplier confirmation checkbox must be ticked")
		}
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("submission failed: %v", err)
	}

	fmt.Printf("trade order %s created at %s\n", receipt.TradeOrderID, receipt.CreationTime)

	poller := checkout.NewPoller(baseURL, nil,
		checkout.WithProviders(toProviders(cfg.Poller.Providers)),
		checkout.WithTiming(cfg.Poller.Warmup(), cfg.Poller.Interval()),
		checkout.WithMaxAttempts(cfg.Poller.MaxAttempts),
		checkout.WithMethodListener(methodLogListener{}),
	)
	result := poller.Poll(ctx, receipt.Token)

	for provider, method := range result.Methods {
		switch method.State {
		case checkout.MethodReady:
			fmt.Printf("%-10s %s\n", provider, method.PaymentURL)
		default:
			fmt.Printf("%-10s unavailable\n", provider)
		}
	}

	if result.Outcome == checkout.OutcomeAllFailed {
		log.Fatal("no payment method became available")
	}
}

func toProviders(names []string) []checkout.Provider {
	out := make([]checkout.Provider, len(names))
	for i, name := range names {
		out[i] = checkout.Provider(name)
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

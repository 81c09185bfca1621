package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/banksim/ledger-engine/internal/config"
	"github.com/banksim/ledger-engine/internal/events"
	"github.com/banksim/ledger-engine/internal/events/kafka"
	"github.com/banksim/ledger-engine/internal/interfaces"
	"github.com/banksim/ledger-engine/internal/ledger"
	"github.com/banksim/ledger-engine/internal/logging"
	"github.com/banksim/ledger-engine/internal/money"
	"github.com/banksim/ledger-engine/internal/storage/file"
	"github.com/banksim/ledger-engine/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var store interfaces.SnapshotStore
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer db.Close()
		pg := postgres.NewSnapshotStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Fatal("ensure schema", zap.Error(err))
		}
		store = pg
	} else {
		store = file.NewSnapshotStore(cfg.DataFile)
	}

	var publisher interfaces.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers)
		defer kp.Close()
		publisher = kp
	}

	led := ledger.NewLedger(store, publisher, logger, ledger.Policy{
		OverdraftLimit:     cfg.OverdraftLimit,
		DailyWithdrawalCap: cfg.DailyWithdrawalCap,
		InterestRate:       cfg.InterestRate,
	})
	snap, err := store.Load(ctx)
	if err != nil {
		logger.Fatal("load snapshot", zap.Error(err))
	}
	if err := led.Restore(snap); err != nil {
		logger.Fatal("restore ledger", zap.Error(err))
	}

	scheduler := ledger.NewInterestAccrualScheduler(led, cfg.AccrualInterval, logger)
	scheduler.Start()

	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	r.HandleFunc("/customers", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Name     string `json:"name"`
			Document string `json:"document"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		cust, err := led.RegisterCustomer(req.Context(), body.Name, body.Document)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, cust)
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			CustomerID string `json:"customer_id"`
			Kind       string `json:"kind"`
			Credential string `json:"credential"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		hash := hashCredential(body.Credential)

		var (
			acct ledger.Account
			err  error
		)
		switch body.Kind {
		case "checking":
			acct, err = led.CreateChecking(req.Context(), body.CustomerID, hash)
		case "savings":
			acct, err = led.CreateSavings(req.Context(), body.CustomerID, hash)
		default:
			http.Error(w, "kind must be checking or savings", http.StatusBadRequest)
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, accountView(acct))
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/authenticate", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		var body struct {
			Credential string `json:"credential"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		acct, err := led.Authenticate(number, hashCredential(body.Credential))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accountView(acct))
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/deposit", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		amount, ok := amountBody(w, req)
		if !ok {
			return
		}
		if err := led.Apply(req.Context(), ledger.NewDeposit(number, amount)); err != nil {
			writeError(w, err)
			return
		}
		balanceResponse(w, led, number)
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/withdraw", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		amount, ok := amountBody(w, req)
		if !ok {
			return
		}
		if err := led.Apply(req.Context(), ledger.NewWithdraw(number, amount)); err != nil {
			writeError(w, err)
			return
		}
		balanceResponse(w, led, number)
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/loan", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		var body struct {
			Principal    money.Money `json:"principal"`
			Installments int         `json:"installments"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		op := ledger.NewLoanDisbursement(number, body.Principal, body.Installments)
		if err := led.Apply(req.Context(), op); err != nil {
			writeError(w, err)
			return
		}
		balanceResponse(w, led, number)
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/accrue", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		applied, err := led.AccrueInterest(req.Context(), number)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"interest": applied})
	}).Methods(http.MethodPost)

	r.HandleFunc("/accounts/{number}/balance", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		balanceResponse(w, led, number)
	}).Methods(http.MethodGet)

	r.HandleFunc("/accounts/{number}/statement", func(w http.ResponseWriter, req *http.Request) {
		number, ok := accountNumber(w, req)
		if !ok {
			return
		}
		records, err := led.Statement(number)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}).Methods(http.MethodGet)

	r.HandleFunc("/transfers", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FromAccount int         `json:"from_account"`
			ToAccount   int         `json:"to_account"`
			Amount      money.Money `json:"amount"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		op := ledger.NewTransfer(body.FromAccount, body.ToAccount, body.Amount)
		if err := led.Apply(req.Context(), op); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "transfer completed"})
	}).Methods(http.MethodPost)

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		logger.Info("shutting down")
		if err := scheduler.Stop(5 * time.Second); err != nil {
			logger.Warn("scheduler stop", zap.Error(err))
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
}

// hashCredential is the presentation layer's side of the credential contract:
// the engine stores and compares opaque bytes only.
func hashCredential(credential string) []byte {
	sum := sha256.Sum256([]byte(credential))
	return sum[:]
}

func accountNumber(w http.ResponseWriter, req *http.Request) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(req)["number"])
	if err != nil {
		http.Error(w, "invalid account number", http.StatusBadRequest)
		return 0, false
	}
	return n, true
}

func amountBody(w http.ResponseWriter, req *http.Request) (money.Money, bool) {
	var body struct {
		Amount money.Money `json:"amount"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return money.Zero(), false
	}
	return body.Amount, true
}

func balanceResponse(w http.ResponseWriter, led *ledger.Ledger, number int) {
	acct, err := led.FindAccount(number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountView(acct))
}

func accountView(acct ledger.Account) map[string]any {
	return map[string]any{
		"number":  acct.Number(),
		"kind":    acct.Kind(),
		"balance": acct.Balance(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSameAccount),
		errors.Is(err, ledger.ErrUnsupportedAccountType):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, ledger.ErrAccountNotFound),
		errors.Is(err, ledger.ErrCustomerNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrDailyLimitExceeded),
		errors.Is(err, ledger.ErrCreditLimitExceeded),
		errors.Is(err, ledger.ErrDuplicateCustomer),
		errors.Is(err, ledger.ErrDuplicateAccountType):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/csrf"

	"remindex/auth"
	"remindex/config"
	"remindex/db"
	"remindex/handlers"
	"remindex/i18n"
	"remindex/reminder"
	"remindex/repo"
	"remindex/session"
)

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	if err := config.LoadConfig("config.json"); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	if err := i18n.LoadTranslations(); err != nil {
		log.Fatalf("Error loading translations: %v", err)
	}

	store, err := db.Open(config.AppConfig.DBPath)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer store.Close()

	sessionMgr, err := session.NewManager(config.AppConfig.PrefsPath)
	if err != nil {
		log.Fatalf("Error opening preferences: %v", err)
	}

	userRepo := repo.NewUserRepo(store)
	reminderRepo := repo.NewReminderRepo(store)

	authSvc := auth.NewService(userRepo, sessionMgr, config.AppConfig.HashPasswords)
	reminderSvc := reminder.NewService(reminderRepo, sessionMgr, store.Notifier())
	checker := auth.NewAvailabilityChecker(userRepo)
	defer checker.Stop()

	devMode, _ := strconv.ParseBool(os.Getenv("REMINDEX_DEV"))

	mux := http.NewServeMux()
	h := handlers.New(authSvc, reminderSvc, sessionMgr, checker, config.AppConfig.SessionKey, devMode)
	h.Register(mux)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.ListenIP, config.AppConfig.ListenPort)
	log.Printf("Server starting on %s (%s)", addr, config.AppConfig.AppName)

	csrfMiddleware := csrf.Protect(
		[]byte(config.AppConfig.SessionKey),
		csrf.Secure(!devMode),
		csrf.Path("/"),
	)

	if err := http.ListenAndServe(addr, CORSMiddleware(csrfMiddleware(mux))); err != nil {
		log.Fatal(err)
	}
}

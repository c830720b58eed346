package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName       string `json:"app_name"`
	ListenIP      string `json:"listen_ip"`
	ListenPort    int    `json:"listen_port"`
	SessionKey    string `json:"session_key"`
	DBPath        string `json:"db_path"`
	PrefsPath     string `json:"prefs_path"`
	HashPasswords bool   `json:"hash_passwords"`
}

var AppConfig Config

func LoadConfig(path string) error {
	// A local .env file may carry overrides; its absence is not an error.
	_ = godotenv.Load()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		return err
	}

	// Override with environment variables if present
	if envKey := os.Getenv("REMINDEX_SESSION_KEY"); envKey != "" {
		AppConfig.SessionKey = envKey
	}
	if envDB := os.Getenv("REMINDEX_DB_PATH"); envDB != "" {
		AppConfig.DBPath = envDB
	}
	if envPrefs := os.Getenv("REMINDEX_PREFS_PATH"); envPrefs != "" {
		AppConfig.PrefsPath = envPrefs
	}
	if envHash := os.Getenv("REMINDEX_HASH_PASSWORDS"); envHash != "" {
		AppConfig.HashPasswords, _ = strconv.ParseBool(envHash)
	}

	if AppConfig.DBPath == "" {
		AppConfig.DBPath = "./reminder.db"
	}
	if AppConfig.PrefsPath == "" {
		AppConfig.PrefsPath = "./reminder_prefs.json"
	}

	// If no key is provided or it's the placeholder, generate a secure random one
	if AppConfig.SessionKey == "" || AppConfig.SessionKey == "CHANGE_ME_IN_PRODUCTION" {
		log.Println("WARNING: No session key configured. Generating a random key. Cookie sessions will be invalidated on restart.")
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err != nil {
			return err
		}
		AppConfig.SessionKey = hex.EncodeToString(randomKey)
	}

	return nil
}

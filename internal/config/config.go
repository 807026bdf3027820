package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	ChapaSecretKey     string `env:"CHAPA_SECRET_KEY,required"`
	ChapaWebhookSecret string `env:"CHAPA_WEBHOOK_SECRET,required"`
	ChapaBaseURL       string `env:"CHAPA_BASE_URL" envDefault:"https://api.chapa.co/v1"`

	// PaymentCallbackURL is the public URL Chapa posts charge events to.
	PaymentCallbackURL string `env:"PAYMENT_CALLBACK_URL,required"`
	PaymentReturnURL   string `env:"PAYMENT_RETURN_URL" envDefault:"ethioshop://payment/success"`

	ShippingFlatETB string `env:"SHIPPING_FLAT_ETB" envDefault:"100"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`
	StorageBucket           string `env:"STORAGE_BUCKET"`

	SeedSecret string `env:"SEED_SECRET"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ssm"
	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3BucketName       string

	// Server
	Port   string
	AppEnv string

	// File Upload
	MaxFileSize       int64
	AllowedExtensions string

	// Logging
	LogLevel string
	LogFile  string

	// SkipMigrate disables AutoMigrate on startup, for deployments
	// where the schema is managed out of band.
	SkipMigrate bool
}

func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local"
}

var AppConfig *Config

// source resolves configuration keys. Keys are looked up in the SSM
// parameter map first (when enabled), then the process environment,
// then the default.
type source struct {
	params map[string]string
}

func (s source) get(key, def string) string {
	key = strings.ToUpper(key)
	if v, ok := s.params[key]; ok && v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (s source) getBool(key string, def bool) bool {
	v := s.get(key, strconv.FormatBool(def))
	return strings.ToLower(v) == "true"
}

// LoadConfig populates AppConfig from SSM Parameter Store (USE_SSM=true)
// or a .env file plus the environment. Fatal on malformed values; the
// server must not come up half-configured.
func LoadConfig() {
	src := loadSource()

	jwtExpires, err := parseExpiry(src.get("JWT_EXPIRES_IN", "24h"))
	if err != nil {
		log.Fatal("Invalid JWT_EXPIRES_IN format:", err)
	}

	maxFileSize, err := strconv.ParseInt(src.get("MAX_FILE_SIZE", "10485760"), 10, 64)
	if err != nil {
		log.Fatal("Invalid MAX_FILE_SIZE format:", err)
	}

	AppConfig = &Config{
		DBHost:     src.get("DB_HOST", "localhost"),
		DBPort:     src.get("DB_PORT", "3306"),
		DBUser:     src.get("DB_USER", "root"),
		DBPassword: src.get("DB_PASSWORD", ""),
		DBName:     src.get("DB_NAME", "schooladmin_go"),

		RedisHost:     src.get("REDIS_HOST", "localhost"),
		RedisPort:     src.get("REDIS_PORT", "6379"),
		RedisPassword: src.get("REDIS_PASSWORD", ""),

		JWTSecret:    src.get("JWT_SECRET", "your_super_secret_jwt_key"),
		JWTExpiresIn: jwtExpires,

		AWSRegion:          src.get("AWS_REGION", "ap-southeast-1"),
		AWSAccessKeyID:     src.get("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: src.get("AWS_SECRET_ACCESS_KEY", ""),
		S3BucketName:       src.get("S3_BUCKET_NAME", "schooladmin-storage"),

		Port:   src.get("PORT", "3000"),
		AppEnv: src.get("APP_ENV", "development"),

		MaxFileSize:       maxFileSize,
		AllowedExtensions: src.get("ALLOWED_EXTENSIONS", "jpg,jpeg,png,webp,gif"),

		LogLevel: src.get("LOG_LEVEL", "info"),
		LogFile:  src.get("LOG_FILE", "logs/app.log"),

		SkipMigrate: src.getBool("SKIP_MIGRATE", false),
	}

	validate(AppConfig)
}

func loadSource() source {
	if os.Getenv("USE_SSM") != "true" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
		return source{}
	}

	// Parameters live under <base>/<stage>/<KEY>.
	base := strings.TrimRight(envOr("SSM_BASE_PATH", "/schooladmin"), "/")
	stage := envOr("STAGE", envOr("APP_ENV", "production"))
	prefix := base + "/" + stage

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(envOr("AWS_REGION", "ap-southeast-1")),
	})
	if err != nil {
		log.Fatal("Failed to create AWS session:", err)
	}

	log.Printf("Loading configuration from SSM (prefix=%s)", prefix)
	return source{params: fetchSSMParameters(ssm.New(sess), prefix)}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseExpiry parses a Go duration, plus the d/w day and week suffixes
// that time.ParseDuration rejects.
func parseExpiry(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}

	s := strings.TrimSpace(strings.ToLower(raw))
	if len(s) > 1 {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err == nil {
			switch s[len(s)-1] {
			case 'd':
				return time.Duration(n) * 24 * time.Hour, nil
			case 'w':
				return time.Duration(n) * 7 * 24 * time.Hour, nil
			}
		}
	}

	_, err := time.ParseDuration(raw)
	return 0, err
}

// fetchSSMParameters pages through every parameter under prefix and
// returns them keyed by the uppercased last path segment.
func fetchSSMParameters(client *ssm.SSM, prefix string) map[string]string {
	out := make(map[string]string)

	in := &ssm.GetParametersByPathInput{
		Path:           aws.String(prefix),
		WithDecryption: aws.Bool(true),
		Recursive:      aws.Bool(true),
	}
	for {
		resp, err := client.GetParametersByPath(in)
		if err != nil {
			log.Printf("Warning: unable to fetch SSM parameters for prefix %s: %v", prefix, err)
			return out
		}
		for _, p := range resp.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			name := *p.Name
			if idx := strings.LastIndex(name, "/"); idx >= 0 {
				name = name[idx+1:]
			}
			if name != "" {
				out[strings.ToUpper(name)] = *p.Value
			}
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			return out
		}
		in.NextToken = resp.NextToken
	}
}

// validate enforces production secrets. Development runs with defaults.
func validate(c *Config) {
	if strings.ToLower(c.AppEnv) != "production" {
		return
	}
	if strings.TrimSpace(c.DBPassword) == "" {
		log.Fatal("DB_PASSWORD is required in production")
	}
	if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == "your_super_secret_jwt_key" {
		log.Fatal("JWT_SECRET is required in production")
	}
	if len(c.JWTSecret) < 16 {
		log.Fatal("JWT_SECRET too short (min 16 chars)")
	}
}

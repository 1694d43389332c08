package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"pulse-api/config"
	"pulse-api/internal/infrastructure/mongodb"
	"pulse-api/pkg/helpers"
	"pulse-api/pkg/mailer"
)

// app-level container to share constructed components across packages.
// Router modules auto-wire themselves from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	store       *mongodb.Store
	redisClient *redis.Client
	gcsClient   *storage.Client

	tokenManager *helpers.TokenManager
	hasher       *helpers.PasswordHasher

	mailClient *mailer.Mailgun
	rabbitPub  *helpers.RabbitPublisher
	esClient   *elasticsearch.Client
)

func SetConfig(c *config.Config)          { cfg = c }
func GetConfig() *config.Config           { return cfg }
func SetLogger(l *logrus.Logger)          { logger = l }
func GetLogger() *logrus.Logger           { return logger }
func SetStore(s *mongodb.Store)           { store = s }
func GetStore() *mongodb.Store            { return store }
func SetRedis(r *redis.Client)            { redisClient = r }
func GetRedis() *redis.Client             { return redisClient }
func SetGCS(s *storage.Client)            { gcsClient = s }
func GetGCS() *storage.Client             { return gcsClient }
func SetTokens(m *helpers.TokenManager)   { tokenManager = m }
func GetTokens() *helpers.TokenManager    { return tokenManager }
func SetHasher(h *helpers.PasswordHasher) { hasher = h }
func GetHasher() *helpers.PasswordHasher  { return hasher }

func SetMailer(m *mailer.Mailgun)             { mailClient = m }
func GetMailer() *mailer.Mailgun              { return mailClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

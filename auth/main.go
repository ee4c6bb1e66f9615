package main

import (
	"os"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/go-oauth2/oauth2/v4/store"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type authSvc struct {
	logger        *zap.SugaredLogger
	oauthServer   *server.Server
	userDb        *gorm.DB
	kafkaProducer *kafka.Producer
}

func main() {

	zapLogger := zap.New(common.GetZapCore(true))
	logger := zapLogger.Sugar()
	logger.Info("Starting BetManager auth service")

	webAddress := os.Getenv("BMP_AUTH_SERVER")
	if webAddress == "" {
		webAddress = ":7000"
	}
	mysqlDsn := os.Getenv("BMP_AUTH_MYSQL")
	if mysqlDsn == "" {
		logger.Fatalf("Missing mysql dsn string in BMP_AUTH_MYSQL env")
		os.Exit(-1)
	}

	kafkaAddress := os.Getenv("BMP_KAFKA")
	if kafkaAddress == "" {
		logger.Fatalf("Missing kafka address in BMP_KAFKA env")
		os.Exit(-1)
	}

	e := common.GetNewEcho(logger)
	e.Use(middleware.Recover())

	db, err := gorm.Open(mysql.Open(mysqlDsn), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to mysql database with dsn provided in BMP_AUTH_MYSQL")
		os.Exit(-1)
	}

	// Ensure tables
	_ = db.AutoMigrate(&User{}, &Role{}, &OAuthClient{})
	createDefaultRoles(db)

	clientStore := NewClientStore(db)

	manager := manage.NewDefaultManager()
	manager.SetAuthorizeCodeTokenCfg(manage.DefaultAuthorizeCodeTokenCfg)
	manager.MapClientStorage(clientStore)

	// Will store access tokens in memory
	manager.MustTokenStorage(store.NewMemoryTokenStore())

	srv := server.NewDefaultServer(manager)
	srv.SetAllowGetAccessRequest(true)
	srv.SetClientInfoHandler(server.ClientFormHandler)

	srv.SetInternalErrorHandler(func(err error) (re *errors.Response) {
		logger.Errorf("Internal Error: %s", err.Error())
		return
	})
	srv.SetResponseErrorHandler(func(re *errors.Response) {
		logger.Errorf("Response Error: %s", re.Error.Error())
	})

	kafkaProducer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": kafkaAddress})
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka Producer")
		os.Exit(-1)
	}
	defer kafkaProducer.Close()
	go func() {
		for e := range kafkaProducer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logger.Errorf("Delivery failed: %v\n", ev.TopicPartition)
				} else {
					logger.Debugf("Delivered message to %v\n", ev.TopicPartition)
				}
			}
		}
	}()

	app := authSvc{
		logger:        logger,
		oauthServer:   srv,
		userDb:        db,
		kafkaProducer: kafkaProducer,
	}
	srv.SetPasswordAuthorizationHandler(app.checkPassword)

	// Only token requests with Password flow are supported (login/password,
	// where login may also be an email)

	e.GET("/oauth/token", app.token)
	e.POST("/register", app.registerUser)
	e.GET("/verify", app.verify)
	e.POST("/verify", app.verify)

	e.Logger.Fatal(e.Start(webAddress))
}

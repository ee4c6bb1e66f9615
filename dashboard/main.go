package main

import (
	"net/http"
	"os"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type dashSvc struct {
	logger         *zap.SugaredLogger
	db             *gorm.DB
	authServer     string
	authHttpClient *http.Client
	kafkaProducer  *kafka.Producer
	kafkaConsumer  *kafka.Consumer
}

func main() {
	zapLogger := zap.New(common.GetZapCore(true))
	logger := zapLogger.Sugar()
	logger.Info("Starting BetManager dashboard service")

	webAddress := os.Getenv("BMP_DASH_SERVER")
	if webAddress == "" {
		webAddress = ":7001"
	}
	mysqlDsn := os.Getenv("BMP_DASH_MYSQL")
	if mysqlDsn == "" {
		logger.Fatalf("Missing mysql dsn string in BMP_DASH_MYSQL env")
		os.Exit(-1)
	}
	authServer := os.Getenv("BMP_AUTH_SERVER")
	if authServer == "" {
		logger.Fatalf("Missing address of Auth server in BMP_AUTH_SERVER env")
		os.Exit(-1)
	}
	kafkaAddress := os.Getenv("BMP_KAFKA")
	if kafkaAddress == "" {
		logger.Fatalf("Missing kafka address in BMP_KAFKA env")
		os.Exit(-1)
	}

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

	kafkaConsumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers": kafkaAddress,
		"group.id":          "Dashboard",
		"auto.offset.reset": "earliest",
	})
	if err != nil {
		logger.Fatalf("Failed to initialize Kafka Consumer")
		os.Exit(-1)
	}

	err = kafkaConsumer.SubscribeTopics([]string{"user_events"}, nil)
	if err != nil {
		logger.Fatalf("Failed to subscribe to necessary Kafka topic")
		os.Exit(-1)
	}

	e := common.GetNewEcho(logger)
	e.Use(middleware.Recover())

	db, err := gorm.Open(mysql.Open(mysqlDsn), &gorm.Config{})
	if err != nil {
		logger.Fatalf("Failed to connect to mysql database with dsn provided in BMP_DASH_MYSQL")
		os.Exit(-1)
	}

	// Ensure tables
	_ = db.AutoMigrate(&User{}, &Task{}, &Account{}, &Pack{}, &PixKey{}, &LogEntry{}, &House{}, &TaskTypeConfig{})
	seedDefaultConfig(db)

	app := dashSvc{
		logger:     logger,
		db:         db,
		authServer: common.EnsureServerProtocol(authServer),
		authHttpClient: &http.Client{
			Transport: &http.Transport{},
		},
		kafkaProducer: kafkaProducer,
		kafkaConsumer: kafkaConsumer,
	}

	e.GET("/tasks", app.getTasks)
	e.POST("/tasks/new", app.newTask)
	e.POST("/tasks/reorder", app.postReorderTasks)
	e.POST("/tasks/:tid/status", app.setTaskStatus)   // tid is UUID
	e.POST("/tasks/:tid/edit", app.patchTask)         // tid is UUID
	e.POST("/tasks/:tid/delete", app.postDeleteTask)  // tid is UUID
	e.POST("/tasks/:tid/deliver", app.postFinishDelivery)

	e.GET("/accounts", app.getAccounts)
	e.POST("/accounts/save", app.postSaveAccount)
	e.POST("/accounts/:aid/limit", app.postLimitAccount)
	e.POST("/accounts/:aid/replacement", app.postMarkReplacement)
	e.POST("/accounts/:aid/reactivate", app.postReactivateAccount)
	e.POST("/accounts/:aid/delete", app.postDeleteAccount)
	e.POST("/accounts/:aid/purge", app.postPurgeAccount)
	e.POST("/accounts/:aid/withdraw", app.postWithdrawForAccount)

	e.GET("/packs", app.getPacks)
	e.POST("/packs/new", app.newPack)
	e.POST("/packs/:pid/edit", app.patchPack)

	e.GET("/logs", app.getLogs)
	e.GET("/insights", app.getInsights)

	e.GET("/config/houses", app.getHouses)
	e.GET("/config/types", app.getTaskTypes)
	e.POST("/config/houses/reorder", app.postReorderHouses)
	e.POST("/config/types/reorder", app.postReorderTaskTypes)
	e.POST("/config/restore", app.postRestoreDefaults)
	e.POST("/config/wipe", app.postClearOperationalData)

	e.GET("/pixkeys", app.getPixKeys)
	e.POST("/pixkeys/new", app.newPixKey)
	e.POST("/pixkeys/:kid/remove", app.postRemovePixKey)

	e.POST("/users/defaultpix", app.postDefaultPixKey)
	e.POST("/users/:uid/role", app.postUserRole)

	abortReadCh := make(chan bool)
	go app.startReadingNotification(abortReadCh)

	e.Logger.Fatal(e.Start(webAddress))

	abortReadCh <- true
}

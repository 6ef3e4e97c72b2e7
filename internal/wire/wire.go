package wire

import (
	"Procura/internal/api"
	"Procura/internal/api/config"
	"Procura/internal/api/handler"
	"Procura/internal/job"
	"Procura/internal/pkg/chatstore"
	"Procura/internal/pkg/cron"
	"Procura/internal/pkg/es"
	"Procura/internal/pkg/identity"
	"Procura/internal/pkg/kafka"
	"Procura/internal/repository"
	"Procura/internal/service"

	"github.com/gin-gonic/gin"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	ChatStore    *chatstore.Store
}

func BuildApplication(db *gorm.DB, mongoDB *mongodriver.Database, cfg *config.Config) (*ApplicationContainer, error) {
	companyRepo := repository.NewCompanyRepo(db)
	requestRepo := repository.NewRequestRepo(db)
	companyESRepo := es.NewCompanyRepo(es.Client)

	store := chatstore.NewStore(mongoDB)

	identityClient := identity.NewClient(cfg.Identity)

	companyService := service.NewCompanyService(companyRepo, companyESRepo)
	chatService := service.NewChatService(store, companyService, requestRepo, identityClient)

	handlers := &api.HandlersGroup{
		ChatHandler:    handler.NewChatHandler(chatService),
		CompanyHandler: handler.NewCompanyHandler(companyService),
		WsHandler:      handler.NewWsHandler(store),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, companyESRepo, companyRepo, store)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(job.NewUnreadCalibrationJob(store))

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		ChatStore:    store,
	}, nil
}

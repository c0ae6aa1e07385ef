package api

import (
	"github.com/lysyi3m/news-bot/app/database"
	"github.com/lysyi3m/news-bot/app/feed"
	"github.com/lysyi3m/news-bot/app/i18n"
	"github.com/lysyi3m/news-bot/app/tasks"
)

type RegistryInterface interface {
	Languages() []i18n.Language
	AllCategories(lang i18n.Language) ([]string, error)
	Resolve(lang i18n.Language, category string) ([]string, error)
	Prices() string
}

var _ RegistryInterface = (*feed.Registry)(nil)

type JobsInterface interface {
	List() []tasks.Job
	Count() int
}

var _ JobsInterface = (*tasks.Jobs)(nil)

type Handler struct {
	deliveries  database.DeliveryRepository
	registry    RegistryInterface
	catalog     i18n.Catalog
	preferences *i18n.Preferences
	jobs        JobsInterface
	scheduler   tasks.TaskSchedulerInterface
	version     string
}

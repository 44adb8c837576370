package app

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/go-chi/chi/v5"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	tgclient "github.com/fixmate/field-service/internal/client/telegram"
	"github.com/fixmate/field-service/internal/config"
	appointmentrepo "github.com/fixmate/field-service/internal/repository/appointment"
	orderrepo "github.com/fixmate/field-service/internal/repository/order"
	orderdetailrepo "github.com/fixmate/field-service/internal/repository/orderdetail"
	repairimagerepo "github.com/fixmate/field-service/internal/repository/repairimage"
	catalogrepo "github.com/fixmate/field-service/internal/repository/servicecatalog"
	sparepartrepo "github.com/fixmate/field-service/internal/repository/sparepart"
	statushistoryrepo "github.com/fixmate/field-service/internal/repository/statushistory"
	warrantyrepo "github.com/fixmate/field-service/internal/repository/warranty"
	appointmentsvc "github.com/fixmate/field-service/internal/service/appointment"
	scconsumer "github.com/fixmate/field-service/internal/service/consumer/statuschanged"
	notifiersvc "github.com/fixmate/field-service/internal/service/notifier"
	ordersvc "github.com/fixmate/field-service/internal/service/order"
	telegramsvc "github.com/fixmate/field-service/internal/service/telegram"
	warrantysvc "github.com/fixmate/field-service/internal/service/warranty"
	appointmenthttp "github.com/fixmate/field-service/internal/transport/http/appointment/v1"
	orderhttp "github.com/fixmate/field-service/internal/transport/http/order/v1"
	"github.com/fixmate/field-service/platform/closer"
	"github.com/fixmate/field-service/platform/db"
	"github.com/fixmate/field-service/platform/db/migrator"
	"github.com/fixmate/field-service/platform/kafka"
	"github.com/fixmate/field-service/platform/kafka/consumer"
	kafkamw "github.com/fixmate/field-service/platform/kafka/middleware"
	"github.com/fixmate/field-service/platform/kafka/producer"
	"github.com/fixmate/field-service/platform/logger"
)

// Notifier is both the enqueue side handed to the services and the worker
// loop started by the app.
type Notifier interface {
	appointmentsvc.Notifier
	Run(ctx context.Context) error
}

type StatusChangedConsumer interface {
	RunStatusChangedConsume(ctx context.Context) error
}

type RouteMounter interface {
	Routes(r chi.Router)
}

type di struct {
	dbPool    *pgxpool.Pool
	txManager *db.TxManager
	migrator  *migrator.Migrator

	appointmentRepo   appointmentsvc.AppointmentRepository
	statusHistoryRepo appointmentsvc.StatusHistoryRepository
	orderDetailRepo   appointmentsvc.OrderDetailRepository
	orderRepo         ordersvc.OrderRepository
	sparePartRepo     appointmentsvc.SparePartRepository
	repairImageRepo   appointmentsvc.RepairImageRepository
	catalogRepo       ordersvc.ServiceCatalogRepository
	warrantyRepo      warrantysvc.WarrantyRepository

	warrantyIssuer appointmentsvc.WarrantyIssuer

	syncProducer          sarama.SyncProducer
	statusChangedProducer kafka.Producer
	notifier              Notifier

	consumerGroup         sarama.ConsumerGroup
	statusChangedKafka    kafka.Consumer
	statusChangedConsumer StatusChangedConsumer

	telegramBot     *bot.Bot
	telegramService telegramService

	appointmentService appointmenthttp.AppointmentService
	orderService       orderhttp.OrderService

	appointmentHandler RouteMounter
	orderHandler       RouteMounter

	router *chi.Mux
}

// telegramService widens the consumer-side notifier with chat registration,
// which the bot's default handler needs.
type telegramService interface {
	scconsumer.StatusChangedNotifier
	AddChatID(ctx context.Context, chatID int64)
}

func NewDI() *di { return &di{} }

func (d *di) DBPool(ctx context.Context) *pgxpool.Pool {
	if d.dbPool == nil {
		pool, err := pgxpool.New(ctx, config.C().Postgres.DSN())
		if err != nil {
			panic(fmt.Sprintf("failed to create pg pool: %v\n", err))
		}

		closer.AddNamed("PGX Pool",
			func(ctx context.Context) error {
				pool.Close()
				return nil
			})

		if err := pool.Ping(ctx); err != nil {
			panic(fmt.Sprintf("failed to ping db: %v\n", err))
		}

		d.dbPool = pool
	}

	return d.dbPool
}

func (d *di) TxManager(ctx context.Context) *db.TxManager {
	if d.txManager == nil {
		d.txManager = db.NewTxManager(d.DBPool(ctx))
	}

	return d.txManager
}

func (d *di) Migrator(ctx context.Context) *migrator.Migrator {
	if d.migrator == nil {
		d.migrator = migrator.NewMigrator(
			stdlib.OpenDBFromPool(d.DBPool(ctx)),
			config.C().Postgres.MigrationDirectory(),
		)

		closer.AddNamed("Migrator",
			func(ctx context.Context) error {
				return d.migrator.Close()
			})
	}

	return d.migrator
}

func (d *di) AppointmentRepository(ctx context.Context) appointmentsvc.AppointmentRepository {
	if d.appointmentRepo == nil {
		d.appointmentRepo = appointmentrepo.NewAppointmentRepository(d.DBPool(ctx))
	}

	return d.appointmentRepo
}

func (d *di) StatusHistoryRepository(ctx context.Context) appointmentsvc.StatusHistoryRepository {
	if d.statusHistoryRepo == nil {
		d.statusHistoryRepo = statushistoryrepo.NewStatusHistoryRepository(d.DBPool(ctx))
	}

	return d.statusHistoryRepo
}

func (d *di) OrderDetailRepository(ctx context.Context) appointmentsvc.OrderDetailRepository {
	if d.orderDetailRepo == nil {
		d.orderDetailRepo = orderdetailrepo.NewOrderDetailRepository(d.DBPool(ctx))
	}

	return d.orderDetailRepo
}

func (d *di) OrderRepository(ctx context.Context) ordersvc.OrderRepository {
	if d.orderRepo == nil {
		d.orderRepo = orderrepo.NewOrderRepository(d.DBPool(ctx))
	}

	return d.orderRepo
}

func (d *di) SparePartRepository(ctx context.Context) appointmentsvc.SparePartRepository {
	if d.sparePartRepo == nil {
		d.sparePartRepo = sparepartrepo.NewSparePartRepository(d.DBPool(ctx))
	}

	return d.sparePartRepo
}

func (d *di) RepairImageRepository(ctx context.Context) appointmentsvc.RepairImageRepository {
	if d.repairImageRepo == nil {
		d.repairImageRepo = repairimagerepo.NewRepairImageRepository(d.DBPool(ctx))
	}

	return d.repairImageRepo
}

func (d *di) ServiceCatalogRepository(ctx context.Context) ordersvc.ServiceCatalogRepository {
	if d.catalogRepo == nil {
		d.catalogRepo = catalogrepo.NewServiceCatalogRepository(d.DBPool(ctx))
	}

	return d.catalogRepo
}

func (d *di) WarrantyRepository(ctx context.Context) warrantysvc.WarrantyRepository {
	if d.warrantyRepo == nil {
		d.warrantyRepo = warrantyrepo.NewWarrantyRepository(d.DBPool(ctx))
	}

	return d.warrantyRepo
}

func (d *di) WarrantyIssuer(ctx context.Context) appointmentsvc.WarrantyIssuer {
	if d.warrantyIssuer == nil {
		d.warrantyIssuer = warrantysvc.NewWarrantyIssuer(
			catalogrepo.NewServiceCatalogRepository(d.DBPool(ctx)),
			d.WarrantyRepository(ctx),
		)
	}

	return d.warrantyIssuer
}

func (d *di) SyncProducer(ctx context.Context) sarama.SyncProducer {
	if d.syncProducer == nil {
		cfg := config.C()

		p, err := sarama.NewSyncProducer(
			cfg.Kafka.Brokers(),
			cfg.Kafka.ProducerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create sync producer: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka sync producer", func(ctx context.Context) error {
			return p.Close()
		})

		d.syncProducer = p
	}

	return d.syncProducer
}

func (d *di) StatusChangedProducer(ctx context.Context) kafka.Producer {
	if d.statusChangedProducer == nil {
		d.statusChangedProducer = producer.NewProducer(
			d.SyncProducer(ctx),
			config.C().Kafka.StatusChangedTopic(),
			logger.L(),
		)
	}

	return d.statusChangedProducer
}

func (d *di) Notifier(ctx context.Context) Notifier {
	if d.notifier == nil {
		d.notifier = notifiersvc.NewNotifier(
			d.StatusChangedProducer(ctx),
			config.C().Kafka.NotifierBufferSize(),
		)
	}

	return d.notifier
}

func (d *di) ConsumerGroup(ctx context.Context) sarama.ConsumerGroup {
	if d.consumerGroup == nil {
		cfg := config.C()

		consumerGroup, err := sarama.NewConsumerGroup(
			cfg.Kafka.Brokers(),
			cfg.Kafka.StatusChangedConsumerGroupID(),
			cfg.Kafka.StatusChangedConsumerConfig(),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create consumer group: %s\n", err.Error()))
		}
		closer.AddNamed("Kafka consumer group", func(ctx context.Context) error {
			return d.consumerGroup.Close()
		})

		d.consumerGroup = consumerGroup
	}

	return d.consumerGroup
}

func (d *di) StatusChangedKafkaConsumer(ctx context.Context) kafka.Consumer {
	if d.statusChangedKafka == nil {
		d.statusChangedKafka = consumer.NewConsumer(
			d.ConsumerGroup(ctx),
			[]string{
				config.C().Kafka.StatusChangedTopic(),
			},
			logger.L(),
			kafkamw.Recovery(logger.L()),
			kafkamw.Logging(logger.L()),
		)
	}

	return d.statusChangedKafka
}

func (d *di) StatusChangedConsumer(ctx context.Context) StatusChangedConsumer {
	if d.statusChangedConsumer == nil {
		d.statusChangedConsumer = scconsumer.NewStatusChangedConsumer(
			d.StatusChangedKafkaConsumer(ctx),
			d.TelegramService(ctx),
		)
	}

	return d.statusChangedConsumer
}

func (d *di) TelegramBot(ctx context.Context) *bot.Bot {
	if d.telegramBot == nil {
		b, err := bot.New(
			config.C().Telegram.BotToken(),
			bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
				if update.Message == nil {
					return
				}
				d.TelegramService(ctx).AddChatID(ctx, update.Message.Chat.ID)
			}),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create telegram bot: %s\n", err.Error()))
		}

		d.telegramBot = b
	}

	return d.telegramBot
}

func (d *di) TelegramService(ctx context.Context) telegramService {
	if d.telegramService == nil {
		d.telegramService = telegramsvc.NewTgService(
			tgclient.NewClient(d.TelegramBot(ctx)),
		)
	}

	return d.telegramService
}

func (d *di) AppointmentService(ctx context.Context) appointmenthttp.AppointmentService {
	if d.appointmentService == nil {
		d.appointmentService = appointmentsvc.NewAppointmentService(
			d.TxManager(ctx),
			d.AppointmentRepository(ctx),
			d.StatusHistoryRepository(ctx),
			d.OrderDetailRepository(ctx),
			orderrepo.NewOrderRepository(d.DBPool(ctx)),
			d.SparePartRepository(ctx),
			d.RepairImageRepository(ctx),
			d.WarrantyIssuer(ctx),
			d.Notifier(ctx),
		)
	}

	return d.appointmentService
}

func (d *di) OrderService(ctx context.Context) orderhttp.OrderService {
	if d.orderService == nil {
		d.orderService = ordersvc.NewOrderService(
			d.TxManager(ctx),
			d.OrderRepository(ctx),
			orderdetailrepo.NewOrderDetailRepository(d.DBPool(ctx)),
			appointmentrepo.NewAppointmentRepository(d.DBPool(ctx)),
			d.StatusHistoryRepository(ctx),
			d.ServiceCatalogRepository(ctx),
			d.Notifier(ctx),
		)
	}

	return d.orderService
}

func (d *di) AppointmentHandler(ctx context.Context) RouteMounter {
	if d.appointmentHandler == nil {
		d.appointmentHandler = appointmenthttp.NewHandler(d.AppointmentService(ctx))
	}

	return d.appointmentHandler
}

func (d *di) OrderHandler(ctx context.Context) RouteMounter {
	if d.orderHandler == nil {
		d.orderHandler = orderhttp.NewHandler(d.OrderService(ctx))
	}

	return d.orderHandler
}

func (d *di) Router(_ context.Context) *chi.Mux {
	if d.router == nil {
		d.router = chi.NewRouter()
	}

	return d.router
}

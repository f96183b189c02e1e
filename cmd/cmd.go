package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"nft-settlement-service/config"
	"nft-settlement-service/metrics"
	"nft-settlement-service/models"
	"nft-settlement-service/rabbit"
	"nft-settlement-service/service"
	"nft-settlement-service/staticerr"
	"nft-settlement-service/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var RootCmd = &cobra.Command{
	Use:   "nft-settlement-service",
	Short: "Marketplace settlement engine for non-fungible assets",
	Long:  `Settlement engine that escrows listed assets, records auction bids and atomically exchanges custody for payment.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			if err := cmd.Usage(); err != nil {
				log.Fatalf("Error printing usage: %v", err)
			}
		}
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the settlement service",
	Long:  `Initialize the settlement service by generating a config file with default values.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(filepath.Dir(config.CfgFile), 0o755); err != nil {
			log.Fatalf("failed to create config directory: %v", err)
		}

		if err := viper.WriteConfigAs(config.CfgFile); err != nil {
			log.Fatalf("failed to write config file: %v", err)
		}

		fmt.Printf("Config file created: %s\n", config.CfgFile)
		fmt.Println()
		fmt.Println("Edit the config file to set the correct values for your environment.")
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the settlement service",
	Long:  `Start the settlement service that consumes marketplace requests and settles orders.`,
	Run: func(cmd *cobra.Command, args []string) {
		viper.AutomaticEnv()

		if err := viper.ReadInConfig(); err == nil {
			fmt.Println("Using config file:", viper.ConfigFileUsed())
		}

		cfg := config.Config{}
		if err := viper.Unmarshal(&cfg); err != nil {
			log.Fatalf("failed to unmarshal config: %v", err)
		}

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Fatalf("invalid log level: %v", err)
		}
		logrus.SetLevel(level)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := start(ctx, cfg); err != nil {
			log.Fatalf("failed to start service: %v", err)
		}

		<-ctx.Done()
		logrus.Infoln("Shutdown signal received, exit...")
	},
}

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}

	config.CfgFile = filepath.Join(home, ".nft-settlement-service", "config.yaml")

	RootCmd.PersistentFlags().StringVar(&config.CfgFile, "config", config.CfgFile, "config file")
	RootCmd.AddCommand(initCmd)
	RootCmd.AddCommand(startCmd)

	cobra.OnInitialize(func() {
		viper.SetConfigFile(config.CfgFile)
		config.SetDefaults()
	})
}

func start(ctx context.Context, cfg config.Config) error {
	redisClient, err := storage.NewRedisClient(cfg.RedisHost)

	if err != nil {
		return err
	}

	connection, err := rabbit.GetRabbitConnection(cfg.RabbitUrl)

	if err != nil {
		return err
	}

	channel, err := connection.Channel()

	if err != nil {
		return err
	}

	if err = rabbit.DeclareTopology(channel); err != nil {
		return err
	}

	ordersStorage := storage.NewOrdersStorage(redisClient)
	configStorage := storage.NewMarketConfigStorage(redisClient)
	sequenceStorage := storage.NewSequenceStorage(redisClient)
	custodyStorage := storage.NewAssetCustodyStorage(redisClient)
	ledgerStorage := storage.NewLedgerStorage(redisClient)

	if err = seedMarketConfig(ctx, configStorage, cfg.Market); err != nil {
		return err
	}

	sender := rabbit.NewSender(ctx, channel)
	accessGuard := service.NewStaticAccessGuard(cfg.Administrators)

	listingService := service.NewListingService(ordersStorage, custodyStorage, &sender, sequenceStorage, cfg.EscrowAccount)
	biddingService := service.NewBiddingService(ordersStorage, configStorage, ledgerStorage, &sender, sequenceStorage, cfg.EscrowAccount)
	settlementService := service.NewSettlementService(ordersStorage, configStorage, custodyStorage, ledgerStorage, &sender, sequenceStorage, cfg.EscrowAccount)
	cancellationService := service.NewCancellationService(ordersStorage, configStorage, custodyStorage, ledgerStorage, &sender, sequenceStorage, accessGuard, cfg.EscrowAccount)
	adminService := service.NewAdminService(configStorage, accessGuard)
	queryService := service.NewQueryService(ordersStorage)

	if err = runProcessors(ctx, channel, listingService, biddingService, settlementService, cancellationService, adminService); err != nil {
		return err
	}

	go serveHttp(cfg.MetricsAddress, queryService)

	logrus.Infoln("Settlement service started")
	return nil
}

type marketConfigSeeder interface {
	IsInitialized(ctx context.Context) (bool, error)
	SetFeeRate(ctx context.Context, feeBps uint64) error
	SetFeeRecipient(ctx context.Context, recipient string) error
	SetExtensionWindow(ctx context.Context, window uint64) error
	SetRecoverGrace(ctx context.Context, grace uint64) error
}

func seedMarketConfig(ctx context.Context, configStorage marketConfigSeeder, defaults config.MarketDefaults) error {
	initialized, err := configStorage.IsInitialized(ctx)

	if err != nil || initialized {
		return err
	}

	// an empty recipient would make every settlement pay fees into nowhere
	if defaults.FeeRecipient == "" {
		return staticerr.ErrorInvalidRecipient
	}

	logrus.Infoln("Seeding marketplace configuration")

	if err = configStorage.SetFeeRate(ctx, defaults.FeeBps); err != nil {
		return err
	}

	if err = configStorage.SetFeeRecipient(ctx, defaults.FeeRecipient); err != nil {
		return err
	}

	if err = configStorage.SetExtensionWindow(ctx, defaults.ExtensionWindow); err != nil {
		return err
	}

	return configStorage.SetRecoverGrace(ctx, defaults.RecoverGrace)
}

func runProcessors(
	ctx context.Context,
	channel *amqp091.Channel,
	listingService *service.ListingService,
	biddingService *service.BiddingService,
	settlementService *service.SettlementService,
	cancellationService *service.CancellationService,
	adminService *service.AdminService,
) error {
	listProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.ListOrderRequest], func(ctx context.Context, request *models.ListOrderRequest) {
		if _, err := listingService.ListAsset(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("list").Inc()
		}
	})

	bulkListProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.BulkListRequest], func(ctx context.Context, request *models.BulkListRequest) {
		if _, err := listingService.BulkList(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("bulk_list").Inc()
		}
	})

	bidProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.PlaceBidRequest], func(ctx context.Context, request *models.PlaceBidRequest) {
		if err := biddingService.PlaceBid(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("bid").Inc()
		}
	})

	buyProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.BuyOrderRequest], func(ctx context.Context, request *models.BuyOrderRequest) {
		if err := settlementService.Buy(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("buy").Inc()
		}
	})

	bulkBuyProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.BulkBuyRequest], func(ctx context.Context, request *models.BulkBuyRequest) {
		if err := settlementService.BulkBuy(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("bulk_buy").Inc()
		}
	})

	claimProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.ClaimOrderRequest], func(ctx context.Context, request *models.ClaimOrderRequest) {
		if err := settlementService.Claim(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("claim").Inc()
		}
	})

	bulkClaimProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.BulkClaimRequest], func(ctx context.Context, request *models.BulkClaimRequest) {
		if err := settlementService.BulkClaim(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("bulk_claim").Inc()
		}
	})

	cancelProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.CancelOrderRequest], func(ctx context.Context, request *models.CancelOrderRequest) {
		if err := cancellationService.CancelOrder(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("cancel").Inc()
		}
	})

	recoverProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.EmergencyRecoverRequest], func(ctx context.Context, request *models.EmergencyRecoverRequest) {
		if err := cancellationService.EmergencyRecover(ctx, request); err != nil {
			metrics.FailedOperations.WithLabelValues("recover").Inc()
		}
	})

	adminProcessor := rabbit.NewProcessor(rabbit.JsonParser[models.AdminConfigRequest], func(ctx context.Context, request *models.AdminConfigRequest) {
		if err := handleAdminRequest(ctx, adminService, request); err != nil {
			metrics.FailedOperations.WithLabelValues("admin").Inc()
		}
	})

	if err := listProcessor.Run(ctx, channel, rabbit.ListQueue); err != nil {
		return err
	}
	if err := bulkListProcessor.Run(ctx, channel, rabbit.BulkListQueue); err != nil {
		return err
	}
	if err := bidProcessor.Run(ctx, channel, rabbit.BidQueue); err != nil {
		return err
	}
	if err := buyProcessor.Run(ctx, channel, rabbit.BuyQueue); err != nil {
		return err
	}
	if err := bulkBuyProcessor.Run(ctx, channel, rabbit.BulkBuyQueue); err != nil {
		return err
	}
	if err := claimProcessor.Run(ctx, channel, rabbit.ClaimQueue); err != nil {
		return err
	}
	if err := bulkClaimProcessor.Run(ctx, channel, rabbit.BulkClaimQueue); err != nil {
		return err
	}
	if err := cancelProcessor.Run(ctx, channel, rabbit.CancelQueue); err != nil {
		return err
	}
	if err := recoverProcessor.Run(ctx, channel, rabbit.RecoverQueue); err != nil {
		return err
	}
	return adminProcessor.Run(ctx, channel, rabbit.AdminQueue)
}

func handleAdminRequest(ctx context.Context, adminService *service.AdminService, request *models.AdminConfigRequest) error {
	switch request.Operation {
	case models.AdminOpSetFeeRate:
		return adminService.SetFeeRate(ctx, request.Caller, request.Value)
	case models.AdminOpSetFeeRecipient:
		return adminService.SetFeeRecipient(ctx, request.Caller, request.Recipient)
	case models.AdminOpSetRoyalty:
		return adminService.SetRoyalty(ctx, request.Caller, request.Collection, request.Value)
	case models.AdminOpSetExtensionWindow:
		return adminService.SetExtensionWindow(ctx, request.Caller, request.Value)
	case models.AdminOpSetRecoverGrace:
		return adminService.SetRecoverGrace(ctx, request.Caller, request.Value)
	default:
		logrus.WithField("requestId", request.Id).Warningln("Unknown admin operation ", request.Operation)
		return nil
	}
}

func serveHttp(address string, queryService *service.QueryService) {
	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	mux := newHttpMux(queryService)
	mux.Handle("/metrics", metrics.Handler(registry))

	if err := http.ListenAndServe(address, mux); err != nil {
		logrus.Errorln("Http endpoint stopped, reason: ", err.Error())
	}
}

type countResponse struct {
	Count int64 `json:"count"`
}

func newHttpMux(queryService *service.QueryService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders/token", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		orders, err := queryService.GetOrdersByToken(r.Context(), query.Get("collection"), query.Get("tokenId"), parseInt(query.Get("offset")), parseInt(query.Get("limit")))
		writeJsonResponse(w, orders, err)
	})

	mux.HandleFunc("/orders/token/count", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		count, err := queryService.GetTokenOrderCount(r.Context(), query.Get("collection"), query.Get("tokenId"))
		writeJsonResponse(w, countResponse{Count: count}, err)
	})

	mux.HandleFunc("/orders/seller", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		orders, err := queryService.GetOrdersBySeller(r.Context(), query.Get("seller"), parseInt(query.Get("offset")), parseInt(query.Get("limit")))
		writeJsonResponse(w, orders, err)
	})

	mux.HandleFunc("/orders/seller/count", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		count, err := queryService.GetSellerOrderCount(r.Context(), query.Get("seller"))
		writeJsonResponse(w, countResponse{Count: count}, err)
	})

	return mux
}

func writeJsonResponse(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err = json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorln("Write query response, reason: ", err.Error())
	}
}

func parseInt(value string) int64 {
	parsed, err := strconv.ParseInt(value, 10, 64)

	if err != nil {
		return 0
	}

	return parsed
}

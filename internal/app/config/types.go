package config

type (
	InternalConfig struct {
		App  App
		Sync Sync
	}

	DriverConfig struct {
		MongoDB  MongoDB
		Redis    Redis
		RabbitMQ RabbitMQ
		Minio    Minio
		Logger   Logger
	}

	App struct {
		Env             string
		Port            string
		Version         string
		EndpointPrefix  string
		MaxRequests     int
		ShutdownTimeout int
		AdminAPIKeyHash string
		EventQueueName  string
	}

	Sync struct {
		TenantConfigCacheTTLInMinute int
		VendorRequestsPerSecond      int
		VendorRequestBurst           int
	}

	MongoDB struct {
		Port     string
		Host     string
		DbName   string
		Username string
		Password string
	}

	Redis struct {
		Host     string
		Port     string
		Password string
	}

	RabbitMQ struct {
		Port     string
		Host     string
		Username string
		Password string
	}

	Minio struct {
		Port       string
		Host       string
		Username   string
		Password   string
		BucketName string
		UseSSL     bool
	}

	Logger struct {
		Level               string
		OutputFileName      string
		OutputErrorFileName string
	}
)

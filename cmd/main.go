package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"GeoScan-App/internal/database"
	domainrepo "GeoScan-App/internal/domain/repository"
	"GeoScan-App/internal/domain/service"
	"GeoScan-App/internal/handler"
	infradb "GeoScan-App/internal/infrastructure/database"
	infrafs "GeoScan-App/internal/infrastructure/firestore"
	"GeoScan-App/internal/infrastructure/h3"
	repoimpl "GeoScan-App/internal/repository"
	"GeoScan-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	ctx := context.Background()

	// ドメインサービスの初期化
	spatialIndex := h3.NewH3SpatialIndex()
	precisionService := service.NewPrecisionService()
	tileService := service.NewTileService(spatialIndex)
	inferenceService := service.NewInferenceService(spatialIndex, precisionService, tileService)

	// モデルレジストリの選択（MODEL_REGISTRY_DRIVER: supabase | postgres）
	registry, cleanup, err := buildRegistry(ctx)
	if err != nil {
		log.Fatalf("モデルレジストリ初期化失敗: %v", err)
	}
	defer cleanup()

	fileStore := repoimpl.NewFileModelStoreRepository()

	// Firestore（推論ジョブキャッシュ）は任意
	var jobRepo domainrepo.PredictionJobRepository
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		firestoreClient, err := infrafs.NewFirestoreClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Firestoreクライアント初期化失敗: %v", err)
		}
		defer firestoreClient.Close()
		jobRepo = repoimpl.NewFirestorePredictionJobRepository(firestoreClient.GetClient())
	} else {
		fmt.Println("⚠️ GOOGLE_CLOUD_PROJECT未設定: 推論ジョブの保存は無効です")
	}

	modelUseCase := usecase.NewModelUseCase(registry, fileStore, precisionService, tileService)
	predictUseCase := usecase.NewPredictUseCase(registry, inferenceService, jobRepo)

	modelsHandler := handler.NewModelsHandler(modelUseCase)
	predictHandler := handler.NewPredictHandler(predictUseCase)

	// ルーティングの設定
	router := gin.Default()
	api := router.Group("/api")
	{
		api.GET("/health", healthHandler)
		api.POST("/models", modelsHandler.RegisterModel)
		api.GET("/models", modelsHandler.ListModels)
		api.POST("/models/import", modelsHandler.ImportModel)
		api.GET("/models/:uid", modelsHandler.GetModel)
		api.DELETE("/models/:uid", modelsHandler.DeleteModel)
		api.POST("/models/:uid/export", modelsHandler.ExportModel)
		api.GET("/models/:uid/tiles", modelsHandler.GetTiles)
		api.POST("/models/:uid/predict", predictHandler.Predict)
		api.GET("/predictions/:job_id", predictHandler.GetPredictionJob)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("GeoScan-App server starting on :%s...\n", port)
	log.Fatal(router.Run(":" + port))
}

// buildRegistry 環境変数に応じてモデルレジストリのバックエンドを構築する
func buildRegistry(ctx context.Context) (domainrepo.ModelRegistryRepository, func(), error) {
	driver := os.Getenv("MODEL_REGISTRY_DRIVER")

	switch driver {
	case "postgres":
		fmt.Println("Initializing PostgreSQL model registry...")
		postgresClient, err := infradb.NewPostgreSQLClientWithRetry(5, 2*time.Second)
		if err != nil {
			return nil, nil, err
		}
		registry := repoimpl.NewPostgresModelRegistryRepository(postgresClient)
		if err := registry.EnsureSchema(ctx); err != nil {
			postgresClient.Close()
			return nil, nil, err
		}
		fmt.Println("✅ PostgreSQL connection successful!")
		return registry, func() { postgresClient.Close() }, nil

	default:
		fmt.Println("Initializing Supabase model registry...")
		supabaseClient, err := database.NewSupabaseClient()
		if err != nil {
			return nil, nil, err
		}
		if err := supabaseClient.HealthCheck(); err != nil {
			return nil, nil, err
		}
		fmt.Println("✅ Supabase connection successful!")
		return repoimpl.NewSupabaseModelRegistryRepository(supabaseClient), func() {}, nil
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "GeoScan-App"})
}

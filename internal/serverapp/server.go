package serverapp

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/fr3shw3b/varsync/pkg/config"
	"github.com/fr3shw3b/varsync/pkg/server"
	"github.com/fr3shw3b/varsync/pkg/store"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/joho/godotenv"
)

func Run(port int, path string) error {
	err := godotenv.Load(".env.server")
	if err != nil && !os.IsNotExist(err) {
		log.Fatal("Failed to load environment variables: ", err)
	}

	router := mux.NewRouter()
	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		ReadTimeout:       1 * time.Second,
		WriteTimeout:      1 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		Handler:           router,
	}

	conf, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration for server: ", err)
	}

	logger := logrus.New()
	logLevel, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	channels := store.NewInMemoryStore(
		&store.InMemoryStoreParams{
			ExpireAfterIdleTime: conf.ChannelIdleTimeExpiry,
		},
		logger,
	)

	srv := server.NewDefaultServer(
		&server.ServerParams{
			WriteTimeout: 1 * time.Second,
		},
		channels,
		logger,
	)
	router.Handle(path, srv)

	log.Printf("Server listening on port %d at %s ... \n", port, path)
	return httpSrv.ListenAndServe()
}

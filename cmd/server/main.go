package main

import (
	"log"
	"os"

	"github.com/fr3shw3b/varsync/internal/serverapp"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "server",
		Usage: "A reference server for the channel variable protocol",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Value: 3000,
				Usage: "The port to run the server on",
			},
			&cli.StringFlag{
				Name:  "path",
				Value: "/",
				Usage: "The path serving websocket connections",
			},
		},
		Action: func(cCtx *cli.Context) error {
			port := cCtx.Int("port")
			path := cCtx.String("path")
			return serverapp.Run(port, path)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

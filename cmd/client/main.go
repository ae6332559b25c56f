package main

import (
	"log"
	"os"

	"github.com/fr3shw3b/varsync/internal/clientapp"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.App{
		Name:  "client",
		Usage: "Binds channel variables and prints their changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server-host",
				Value: "localhost",
				Usage: "The host on which the server is accessible",
			},
			&cli.IntFlag{
				Name:  "server-port",
				Value: 3000,
				Usage: "The port the server is running on",
			},
			&cli.StringFlag{
				Name:  "path",
				Value: "/",
				Usage: "The websocket path on the server",
			},
			&cli.StringFlag{
				Name:  "bindings",
				Usage: "The binding declaration file, BINDINGS_FILE when not set",
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "Writes a variable once connected, as channel:var=value",
			},
		},
		Action: func(cCtx *cli.Context) error {
			return clientapp.Run(&clientapp.RunParams{
				ServerHost:   cCtx.String("server-host"),
				ServerPort:   cCtx.Int("server-port"),
				Path:         cCtx.String("path"),
				BindingsFile: cCtx.String("bindings"),
				Sets:         cCtx.StringSlice("set"),
			})
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

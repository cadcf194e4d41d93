package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/prosperfactory/paygate/internal/api"
	"github.com/prosperfactory/paygate/internal/catalog"
	"github.com/prosperfactory/paygate/internal/config"
	"github.com/prosperfactory/paygate/internal/gateway"
	"github.com/prosperfactory/paygate/internal/stripe"
	"github.com/prosperfactory/paygate/internal/verify"
)

// ServeCommand returns the CLI command for starting the gateway server
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the download gateway server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port for the server",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.Int("port")
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			for _, envVar := range config.MissingCredentials(cfg) {
				log.Warn().Str("env_var", envVar).Msg("credential not set; matching sessions will get a server error")
			}

			registry := catalog.NewRegistry()
			client := stripe.New(cfg.Stripe.BaseURL)
			verifier := verify.NewVerifier(client, cfg.Stripe.SecretKey, cfg.Stripe.TestSecretKey)
			gw := gateway.New(registry, verifier, cfg.Assets.DriveURLTemplate)

			server := api.NewServer(cfg.Server.Port, gw, verifier, registry)
			log.Info().
				Int("port", cfg.Server.Port).
				Strs("locales", registry.Locales()).
				Msg("starting paygate server")
			return server.Start()
		},
	}
}

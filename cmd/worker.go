/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/staybook/apiserver/config"
	"github.com/staybook/apiserver/internal/mq"
	"github.com/staybook/apiserver/internal/services"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Runs the booking notification worker",
	Long: `Consumes booking lifecycle events from the configured message
broker and emits guest/provider notifications. Usage:

	staybook worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "worker").Logger()

		broker, err := mq.FromConfig(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("init mq failed: %w", err)
		}
		if broker == nil {
			return fmt.Errorf("no mq backend configured; set MQ_BACKEND")
		}
		defer func() {
			_ = broker.Close()
		}()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Subscribe blocks, so each channel gets its own goroutine.
		channels := []string{services.ChannelBookingCreated, services.ChannelBookingCancelled}
		errCh := make(chan error, len(channels))
		for _, channel := range channels {
			channel := channel
			go func() {
				log.Info().Str("channel", channel).Msg("subscribed")
				errCh <- broker.Subscribe(ctx, channel, notifyHandler(log))
			}()
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return nil
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("subscriber stopped: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// notifyHandler stands in for a mail/SMS integration: it decodes the
// event and records the notification.
func notifyHandler(log zerolog.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		var event services.BookingEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Error().Err(err).Str("msg_id", msg.ID).Msg("undecodable booking event")
			return nil
		}

		log.Info().
			Str("type", event.Type).
			Int("booking_id", event.BookingID).
			Int("hotel_id", event.HotelID).
			Int("user_id", event.UserID).
			Str("check_in", event.CheckIn.String()).
			Str("check_out", event.CheckOut.String()).
			Msg("booking notification")
		return nil
	}
}

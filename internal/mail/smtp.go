package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	"github.com/hoa-manager/hoa-backend/internal/config"
	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/repository/storage"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Dialer opens an SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPDistributor e-mails the rendered artifact to each recipient separately
type SMTPDistributor struct {
	dialer       Dialer
	from         string
	organization string
	store        storage.ArtifactStore
	logger       zerolog.Logger
}

// NewSMTPDistributor creates a distributor backed by a gomail dialer
func NewSMTPDistributor(cfg config.MailConfig, organization string, store storage.ArtifactStore, logger zerolog.Logger) *SMTPDistributor {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return NewSMTPDistributorWithDialer(d, cfg.From, organization, store, logger)
}

// NewSMTPDistributorWithDialer creates a distributor using the given dialer
func NewSMTPDistributorWithDialer(dialer Dialer, from, organization string, store storage.ArtifactStore, logger zerolog.Logger) *SMTPDistributor {
	return &SMTPDistributor{
		dialer:       dialer,
		from:         from,
		organization: organization,
		store:        store,
		logger:       logger.With().Str("component", "mail").Str("mode", "smtp").Logger(),
	}
}

// Send delivers one message per recipient and keeps going past individual failures
func (d *SMTPDistributor) Send(ctx context.Context, gen *domain.ReportGeneration, recipients []string) domain.DistributionResult {
	result := domain.DistributionResult{TotalRecipients: len(recipients)}
	if len(recipients) == 0 {
		result.Success = true
		return result
	}

	attachment, err := d.readArtifact(ctx, gen.FileName)
	if err != nil {
		d.logger.Error().Err(err).Int64("generation_id", gen.ID).Msg("Failed to read report artifact for e-mail")
		result.Error = err.Error()
		return result
	}

	sc, err := d.dialer.Dial()
	if err != nil {
		d.logger.Error().Err(err).Int64("generation_id", gen.ID).Msg("Failed to connect to SMTP server")
		result.Error = fmt.Sprintf("smtp dial: %v", err)
		return result
	}
	defer sc.Close()

	var errs []error
	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := gomail.Send(sc, d.message(gen, to, attachment)); err != nil {
			d.logger.Warn().Err(err).Int64("generation_id", gen.ID).Str("to", to).Msg("Failed to send report e-mail")
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		result.SentCount++
	}

	if len(errs) > 0 {
		result.Error = errors.Join(errs...).Error()
	}
	result.Success = result.SentCount == result.TotalRecipients

	d.logger.Info().
		Int64("generation_id", gen.ID).
		Int("sent", result.SentCount).
		Int("total", result.TotalRecipients).
		Msg("Report e-mail distribution finished")
	return result
}

func (d *SMTPDistributor) readArtifact(ctx context.Context, key string) ([]byte, error) {
	rc, err := d.store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open artifact %s: %w", key, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *SMTPDistributor) message(gen *domain.ReportGeneration, to string, attachment []byte) *gomail.Message {
	title := gen.Kind.Title()
	period := fmt.Sprintf("%s to %s", gen.PeriodStart.Format("2006-01-02"), gen.PeriodEnd.Format("2006-01-02"))

	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", d.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s - %s", d.organization, title))
	m.SetBody("text/plain", fmt.Sprintf(
		"Hello,\n\nAttached is the %s for %s covering %s.\n\nRegards,\n%s\n",
		title, d.organization, period, d.organization,
	))

	contentType := mime.TypeByExtension(filepath.Ext(gen.FileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.Attach(gen.FileName,
		gomail.SetHeader(map[string][]string{"Content-Type": {contentType}}),
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(attachment)
			return err
		}),
	)
	return m
}

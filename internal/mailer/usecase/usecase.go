// Package usecase implements the mailer module: it turns passcode events
// into delivered emails.
package usecase

import (
	"context"

	"github.com/plungelab/authgate/internal/pkg/config"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/mail"
	"github.com/plungelab/authgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type Usecase struct {
	mailer    mail.Mail
	validator validator.Validator
	cfg       config.Config
	ins       instrument.Instrumentation
}

type Dependency struct {
	Mailer     mail.Mail
	Validator  validator.Validator
	Config     config.Config
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		mailer:    dep.Mailer,
		validator: dep.Validator,
		cfg:       dep.Config,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("mailer.usecase").Start(ctx, name)
}

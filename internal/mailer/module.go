package mailer

import (
	"context"

	"github.com/plungelab/authgate/internal/mailer/inbound"
	"github.com/plungelab/authgate/internal/mailer/usecase"
	"github.com/plungelab/authgate/internal/pkg/config"
	"github.com/plungelab/authgate/internal/pkg/goroutine"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/mail"
	"github.com/plungelab/authgate/internal/pkg/messaging"
	"github.com/plungelab/authgate/internal/pkg/uid"
	"github.com/plungelab/authgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	Messaging  messaging.Messaging
	Mail       mail.Mail
	Config     config.Config
	Instrument instrument.Instrumentation
	UUID       uid.StringID
	Goroutine  *goroutine.Manager
	Validator  validator.Validator
}

func New(dep Dependency) error {
	uc := usecase.New(usecase.Dependency{
		Mailer:     dep.Mail,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Instrument: dep.Instrument,
	})

	if dep.Ctx != nil {
		inbound.RegisterMQConsumer(dep.Ctx, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)
	}

	return nil
}

package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plungelab/authgate/internal/auth/inbound"
	"github.com/plungelab/authgate/internal/auth/outbound/db"
	"github.com/plungelab/authgate/internal/auth/outbound/idp"
	"github.com/plungelab/authgate/internal/auth/outbound/notify"
	"github.com/plungelab/authgate/internal/auth/usecase"
	"github.com/plungelab/authgate/internal/pkg/clock"
	"github.com/plungelab/authgate/internal/pkg/config"
	"github.com/plungelab/authgate/internal/pkg/hash"
	"github.com/plungelab/authgate/internal/pkg/instrument"
	"github.com/plungelab/authgate/internal/pkg/jwt"
	"github.com/plungelab/authgate/internal/pkg/mail"
	"github.com/plungelab/authgate/internal/pkg/messaging"
	"github.com/plungelab/authgate/internal/pkg/otp"
	"github.com/plungelab/authgate/internal/pkg/ratelimit"
	"github.com/plungelab/authgate/internal/pkg/router"
	"github.com/plungelab/authgate/internal/pkg/uid"
	"github.com/plungelab/authgate/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	Bcrypt     hash.Hash                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	dbAuth := db.NewDB(dep.DBConn, dep.Instrument)
	limiter := ratelimit.NewRedis(dep.CacheConn, dep.Config.GetMinute("modules.auth.limiter_horizon_minutes"))
	verifier := idp.NewVerifier(dep.Config, dep.Instrument)

	ucDep := usecase.Dependency{
		Store:      dbAuth,
		Limiter:    limiter,
		IDP:        verifier,
		Validator:  dep.Validator,
		Config:     dep.Config,
		Bcrypt:     dep.Bcrypt,
		Generator:  otp.NewNumeric(dep.Config.GetInt("modules.auth.passcode_digits")),
		UID:        dep.UID,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	}

	// Passcode delivery either goes straight out over SMTP or through the
	// broker for the mailer module to pick up.
	if dep.Config.GetString("modules.auth.delivery") == "mq" {
		ucDep.Notifier = notify.NewMQSink(dep.Messaging, dep.Instrument)
	} else {
		ucDep.Notifier = notify.NewSMTPSink(dep.Mail, dep.Config.GetString("modules.mailer.from"), dep.Instrument)
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

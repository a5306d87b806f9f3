package service

import (
	"context"
	"time"

	"github.com/deppfellow/webbrayns-backend/internal/errs"
	"github.com/deppfellow/webbrayns-backend/internal/lib/brayns"
	"github.com/rs/zerolog"
)

// BraynsConn is an open connection to a Brayns instance.
type BraynsConn interface {
	brayns.Requester
	Close() error
}

// BraynsDialer opens a connection to the Brayns instance at host.
type BraynsDialer func(ctx context.Context, host string) (BraynsConn, error)

// DialBrayns is the websocket BraynsDialer.
func DialBrayns(ctx context.Context, host string) (BraynsConn, error) {
	return brayns.Dial(ctx, host)
}

// SetMaterialInput is a validated material change. Glossiness and Opacity
// are nil when the caller did not set them.
type SetMaterialInput struct {
	Host         string
	ModelID      int64
	MaterialID   int64
	DiffuseColor []float64
	ShadingMode  string
	Glossiness   *float64
	Opacity      *float64
}

// MaterialService edits materials through the Phaneron plugin of Brayns.
// A connection is opened for each call and closed after it.
type MaterialService struct {
	dial           BraynsDialer
	dialTimeout    time.Duration
	requestTimeout time.Duration
	logger         *zerolog.Logger
}

func NewMaterialService(dial BraynsDialer, dialTimeout, requestTimeout time.Duration, logger *zerolog.Logger) *MaterialService {
	return &MaterialService{
		dial:           dial,
		dialTimeout:    dialTimeout,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// SetMaterial enables the extra attributes of the model then applies the
// material. Unset glossiness is 0 and unset opacity is 1.
func (s *MaterialService) SetMaterial(ctx context.Context, in SetMaterialInput) error {
	dialCtx, cancel := context.WithTimeout(ctx, s.dialTimeout)
	conn, err := s.dial(dialCtx, in.Host)
	cancel()
	if err != nil {
		return errs.Unexpected(err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Debug().Err(err).Str("host", in.Host).Msg("failed to close brayns connection")
		}
	}()

	ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	explorer := brayns.NewCircuitExplorer(conn)
	if err := explorer.SetMaterialExtraAttributes(ctx, in.ModelID); err != nil {
		return errs.Unexpected(err)
	}

	material := brayns.NewMaterial(in.ModelID, in.MaterialID, in.DiffuseColor, brayns.ParseShadingMode(in.ShadingMode))
	if in.Glossiness != nil {
		material.Glossiness = *in.Glossiness
	}
	if in.Opacity != nil {
		material.Opacity = *in.Opacity
	}

	if err := explorer.SetMaterial(ctx, material); err != nil {
		return errs.Unexpected(err)
	}

	requestLogger(ctx, s.logger).Debug().
		Str("host", in.Host).
		Int64("model_id", in.ModelID).
		Int64("material_id", in.MaterialID).
		Int("shading_mode", int(material.ShadingMode)).
		Msg("material set")
	return nil
}

// Package scheduler corre los jobs programados del servicio. Hoy solo uno: el
// barrido diario de tiquetes por vencer. La reconciliación no se programa
// aquí: se dispara manualmente por endpoint.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/fa146612-art/kingdog-system-sub000/internal/application/attendance"
	"github.com/fa146612-art/kingdog-system-sub000/pkg/config"
)

// Scheduler agrupa los jobs cron del servicio.
type Scheduler struct {
	cron     *cron.Cron
	ticketUC *attendance.TicketUseCase
	cfg      config.ReminderConfig
}

// New construye el scheduler con el parser cron estándar de 5 campos.
func New(cfg config.ReminderConfig, ticketUC *attendance.TicketUseCase) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		ticketUC: ticketUC,
		cfg:      cfg,
	}
}

// Start registra y arranca los jobs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.notifyExpiringTickets); err != nil {
		return err
	}
	s.cron.Start()
	log.Info().Str("spec", s.cfg.CronSpec).Msg("scheduler arrancado")
	return nil
}

// Stop detiene el cron y espera a que terminen los jobs en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("scheduler detenido")
}

func (s *Scheduler) notifyExpiringTickets() {
	before := time.Now().AddDate(0, 0, s.cfg.DaysAhead)
	n, err := s.ticketUC.NotifyExpiring(before)
	if err != nil {
		log.Error().Err(err).Msg("barrido de tiquetes por vencer falló")
		return
	}
	log.Info().Int("count", n).Msg("tiquetes por vencer notificados")
}

package events_test

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/user-management/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AuditLogger", func() {
	It("logs every event published on the bus", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewTextHandler(&buf, nil))

		bus := events.NewEventBus(lg)
		bus.Subscribe(events.Wildcard, events.AuditLogger(lg))

		ev := events.NewAccountDeactivatedEvent("e@x.com", "hr@x.com", time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
		Expect(bus.PublishSync(context.Background(), ev)).To(Succeed())

		out := buf.String()
		Expect(out).To(ContainSubstring("domain event"))
		Expect(out).To(ContainSubstring(events.EventTypeAccountDeactivated))
		Expect(out).To(ContainSubstring(ev.EventID()))
	})
})

package events

import (
	"fmt"
	"log"
	"strings"
)

// FormatEvent renders an event as a single log line.
func FormatEvent(e Event) string {
	switch ev := e.(type) {
	case Crisis:
		return fmt.Sprintf("crisis %s | realm=%d severity=%.2f causes=%s",
			ev.CrisisKind, ev.Realm, ev.Severity, strings.Join(ev.Causes, ","))
	case SanctionImposed:
		return fmt.Sprintf("sanction imposed %s | %d -> %d type=%s severity=%s damage=%d/mo reason=%q",
			ev.SanctionID, ev.Imposer, ev.Target, ev.Type, ev.Severity, ev.MonthlyDamage, ev.Reason)
	case SanctionLifted:
		return fmt.Sprintf("sanction lifted %s | %d -> %d total_damage=%d months=%d",
			ev.SanctionID, ev.Imposer, ev.Target, ev.TotalDamage, ev.MonthsActive)
	case TradeAgreementEstablished:
		return fmt.Sprintf("agreement established %s | %d <-> %d type=%s bonus=%.2fx duration=%dy",
			ev.AgreementID, ev.RealmA, ev.RealmB, ev.Type, ev.ExpectedTradeIncrease, ev.DurationYears)
	case TradeAgreementExpired:
		return fmt.Sprintf("agreement expired %s | %d <-> %d value_generated=%.0f",
			ev.AgreementID, ev.RealmA, ev.RealmB, ev.TotalValueGenerated)
	case WarEconomicDamage:
		return fmt.Sprintf("war damage | %d vs %d month=%d cost=%d disruption=%d",
			ev.Aggressor, ev.Defender, ev.MonthsAtWar, ev.MonthlyCost, ev.TradeDisruption)
	}
	return fmt.Sprintf("event %s", e.Kind())
}

// AttachLogger subscribes a log sink that prints every published event.
func AttachLogger(bus *Bus) {
	bus.SubscribeAll(func(e Event) {
		log.Printf("[INFO] %s", FormatEvent(e))
	})
}

package events

import (
	"testing"
	"time"

	gormModels "winterops/stationboard/internal/models/gorm"
)

func publishFor(d *Dispatcher, tail, station string) {
	d.Publish(ChangeEvent{
		Type:       AllocationCreated,
		Allocation: gormModels.Allocation{TailNumber: tail, StationID: station},
	})
}

func TestDispatcher_PredicateFiltering(t *testing.T) {
	d := NewDispatcher()

	tailCh, cancelTail := d.Subscribe(ForTail("N123AB"))
	defer cancelTail()
	stationCh, cancelStation := d.Subscribe(ForStation("DFW"))
	defer cancelStation()
	allCh, cancelAll := d.Subscribe(All)
	defer cancelAll()

	publishFor(d, "N123AB", "CLT")
	publishFor(d, "N999ZZ", "DFW")

	select {
	case ev := <-tailCh:
		if ev.Allocation.TailNumber != "N123AB" {
			t.Errorf("Tail subscription got event for %s", ev.Allocation.TailNumber)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected tail subscription to receive its event")
	}
	select {
	case ev := <-tailCh:
		t.Errorf("Tail subscription received unrelated event for %s", ev.Allocation.TailNumber)
	default:
	}

	select {
	case ev := <-stationCh:
		if ev.Allocation.StationID != "DFW" {
			t.Errorf("Station subscription got event for %s", ev.Allocation.StationID)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected station subscription to receive its event")
	}

	for i := 0; i < 2; i++ {
		select {
		case <-allCh:
		case <-time.After(time.Second):
			t.Fatal("Expected All subscription to receive both events")
		}
	}
}

func TestDispatcher_CancelClosesChannel(t *testing.T) {
	d := NewDispatcher()

	ch, cancel := d.Subscribe(All)
	cancel()

	if _, ok := <-ch; ok {
		t.Error("Expected channel to be closed after cancel")
	}

	// Publishing after cancel must not panic or deliver
	publishFor(d, "N123AB", "DFW")
}

func TestDispatcher_StampsEventTime(t *testing.T) {
	d := NewDispatcher()

	ch, cancel := d.Subscribe(All)
	defer cancel()

	publishFor(d, "N123AB", "DFW")

	select {
	case ev := <-ch:
		if ev.At.IsZero() {
			t.Error("Expected Publish to stamp the event time")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected event")
	}
}

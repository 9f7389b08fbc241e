package robus

import "testing"

func TestRegistryCreateRejectsLongAlias(t *testing.T) {
	r := newRegistry()
	_, err := r.create("alias-sixteen-16", Gate, nil)
	if err == nil {
		t.Fatal("expected alias-too-long error")
	}
}

func TestRegistryDispatchBroadcast(t *testing.T) {
	r := newRegistry()
	h1, _ := r.create("a", Gate, nil)
	h2, _ := r.create("b", Servo, nil)
	r.setID(h1, 1)
	r.setID(h2, 2)

	got := r.dispatch(Broadcast(Identify, nil))
	if len(got) != 2 {
		t.Fatalf("expected both modules dispatched, got %d", len(got))
	}
}

func TestRegistryDispatchByID(t *testing.T) {
	r := newRegistry()
	h1, _ := r.create("a", Gate, nil)
	h2, _ := r.create("b", Servo, nil)
	r.setID(h1, 10)
	r.setID(h2, 20)

	got := r.dispatch(ID(10, Identify, nil))
	if len(got) != 1 || got[0].ID != 10 {
		t.Fatalf("expected only id=10 dispatched, got %+v", got)
	}
}

func TestRegistryDispatchSnifferSeesEveryIDFrame(t *testing.T) {
	r := newRegistry()
	h1, _ := r.create("a", Gate, nil)
	hSniff, _ := r.create("snoop", Sniffer, nil)
	r.setID(h1, 5)
	r.setID(hSniff, 0)

	got := r.dispatch(ID(5, Identify, nil))
	if len(got) != 2 {
		t.Fatalf("expected target module plus sniffer, got %d", len(got))
	}

	got = r.dispatch(ID(999, Identify, nil))
	if len(got) != 1 || got[0].Type != Sniffer {
		t.Fatalf("expected only sniffer for an unrelated id, got %+v", got)
	}
}

func TestRegistryDispatchByType(t *testing.T) {
	r := newRegistry()
	h1, _ := r.create("a", Servo, nil)
	h2, _ := r.create("b", RgbLed, nil)
	r.setID(h1, 1)
	r.setID(h2, 2)

	got := r.dispatch(TypeMsg(uint16(Servo), Identify, nil))
	if len(got) != 1 || got[0].Type != Servo {
		t.Fatalf("expected only Servo-typed module, got %+v", got)
	}
}

func TestRegistryDispatchMulticastMatchesNothing(t *testing.T) {
	r := newRegistry()
	h1, _ := r.create("a", Gate, nil)
	r.setID(h1, 1)

	got := r.dispatch(Multicast(1, Identify, nil))
	if len(got) != 0 {
		t.Fatalf("expected no multicast membership table, got %+v", got)
	}
}

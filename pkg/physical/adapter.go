package physical

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robus-bus/robus/pkg/robus"
)

// Config describes the real serial line and GPIO pins an Adapter drives.
type Config struct {
	// Device is the serial device path, e.g. "/dev/ttyUSB0".
	Device string
	// Baud is the line rate; 57600 is the bus's nominal rate (spec.md
	// §4.6).
	Baud int
	// DriverEnablePin and ReceiverEnablePin name the GPIO lines wired to
	// the RS-485 transceiver's DE and /RE inputs, looked up by
	// periph.io/x/conn/v3/gpioreg.
	DriverEnablePin   string
	ReceiverEnablePin string
}

// Adapter is the concrete, host-side robus.Peripheral: a real serial port
// opened the way the teacher's pkg/usock.New opens tarm/serial ports
// (fixed 8N1, configurable baud, ReadTimeout: 0 for a blocking read loop),
// plus two GPIO lines for transceiver direction (SPEC_FULL.md §4.8).
type Adapter struct {
	port *serial.Port
	de   gpio.PinIO
	re   gpio.PinIO
	baud uint32

	mu     sync.Mutex
	timer  *time.Timer
	onFire func()
}

// NewAdapter opens the serial port and GPIO pins named in cfg. UART
// config matches spec.md §4.6: 8 data bits, 1 stop bit, no parity.
func NewAdapter(cfg Config) (*Adapter, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("physical: host.Init: %w", err)
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("physical: open serial port %s: %w", cfg.Device, err)
	}

	de := gpioreg.ByName(cfg.DriverEnablePin)
	if de == nil {
		return nil, fmt.Errorf("physical: unknown driver-enable pin %q", cfg.DriverEnablePin)
	}
	re := gpioreg.ByName(cfg.ReceiverEnablePin)
	if re == nil {
		return nil, fmt.Errorf("physical: unknown receiver-enable pin %q", cfg.ReceiverEnablePin)
	}
	if err := de.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("physical: init driver-enable pin: %w", err)
	}
	if err := re.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("physical: init receiver-enable pin: %w", err)
	}

	return &Adapter{
		port: port,
		de:   de,
		re:   re,
		baud: uint32(cfg.Baud),
	}, nil
}

// Close releases the serial port. GPIO pins are left in their last state.
func (a *Adapter) Close() error {
	return a.port.Close()
}

func (a *Adapter) Baudrate() uint32 { return a.baud }

// ReadByte blocks for exactly one byte, the same one-byte-at-a-time
// discipline the teacher's readLoop uses for precise state-machine
// control.
func (a *Adapter) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	for {
		n, err := a.port.Read(buf)
		if err != nil {
			return 0, err
		}
		if n == 1 {
			return buf[0], nil
		}
	}
}

func (a *Adapter) WriteByte(b byte) error {
	_, err := a.port.Write([]byte{b})
	return err
}

// SetDriverEnable and SetReceiverEnable drive the transceiver direction
// per spec.md §4.6: both LOW for receive, both HIGH for transmit.
func (a *Adapter) SetDriverEnable(enabled bool) {
	if err := a.de.Out(level(enabled)); err != nil {
		log.Printf("physical: set driver-enable: %v", err)
	}
}

func (a *Adapter) SetReceiverEnable(enabled bool) {
	if err := a.re.Out(level(enabled)); err != nil {
		log.Printf("physical: set receiver-enable: %v", err)
	}
}

func level(high bool) gpio.Level {
	if high {
		return gpio.High
	}
	return gpio.Low
}

func (a *Adapter) SetTimeoutHandler(fn func()) {
	a.mu.Lock()
	a.onFire = fn
	a.mu.Unlock()
}

func (a *Adapter) StartTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	if d <= 0 {
		return
	}
	a.timer = time.AfterFunc(d, func() {
		a.mu.Lock()
		fn := a.onFire
		a.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}

// main.go - fox32 command-line entry point: wiring, lifecycle, shutdown

/*
Copyright (c) 2024-2026 the fox32 project contributors.
Licensed under the GNU General Public License v3 or later.

Grounded on the teacher's main.go: parse flags/args, construct every
component, map devices onto the bus, start the CPU and device tasks, then
hand off to the host frontend (here ebiten, or a headless frame pump for
tests and CI) and exit with a status reflecting how the run ended.
*/

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func main() {
	romPath := flag.String("rom", "fox32.rom", "path to the ROM image loaded at 0x80000000")
	ramMiB := flag.Int("ram", DefaultRAMSize/(1024*1024), "RAM size in MiB")
	scale := flag.Int("scale", 1, "scale factor shown in the window title (the window opens at 640x480)")
	headless := flag.Bool("headless", false, "run without opening a window (CPU and devices only)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [disk-image ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	rom, err := os.ReadFile(*romPath)
	if err != nil {
		log.Fatalf("fox32: reading ROM %q: %v", *romPath, err)
	}

	printBanner(*romPath, len(rom), *ramMiB, *headless)

	fabric := NewInterruptFabric()
	mem := NewMemory(*ramMiB*1024*1024, rom, DefaultROMSize, fabric)
	bus := NewBus(mem, fabric)

	disk := NewDiskController(mem, fabric)
	for i, path := range flag.Args() {
		if i >= DiskSlotCount {
			log.Printf("fox32: ignoring disk image %q: only %d slots available", path, DiskSlotCount)
			break
		}
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			log.Fatalf("fox32: opening disk image %q: %v", path, err)
		}
		defer f.Close()
		disk.Insert(i, f)
	}

	mixer := NewAudioMixer()
	audioChannels := make([]*AudioChannel, AudioChannelCount)
	for i := range audioChannels {
		audioChannels[i] = NewAudioChannel(i, mem, fabric, mixer)
	}

	keyboard := NewKeyboard()
	mouse := NewMouse()
	overlays := NewOverlays()

	// Fixed MMIO map, attached before the CPU starts (spec.md §3
	// "Lifecycle": no dynamic hot-plugging once the machine is running).
	bus.Map(MMIOBase+DiskSlotReg, MMIOBase+DiskStatusReg+3, disk)
	for i, ch := range audioChannels {
		base := MMIOBase + AudioChannelBase + uint32(i)*AudioChannelStride
		bus.Map(base, base+AudioChannelStride-1, ch)
	}
	bus.Map(MMIOBase+0x200, MMIOBase+0x200+ClipboardStatusReg+3, keyboard)
	bus.Map(MMIOBase+0x300, MMIOBase+0x300+MouseEventsReg+3, mouse)
	bus.Map(MMIOBase+0x400, MMIOBase+0x400+OverlayCount*OverlayStride-1, overlays)

	shutdown := make(chan struct{})
	var closeOnce sync.Once
	requestShutdown := func() { closeOnce.Do(func() { close(shutdown) }) }

	cpu := NewCPU(bus, fabric, shutdown)

	var g errgroup.Group
	cpuDone := make(chan struct{})
	g.Go(func() error {
		cpu.Run()
		close(cpuDone)
		return nil
	})
	// A guest halt with interrupts masked is terminal (cpu.go's Run); treat
	// it the same as an external shutdown request so a headless run (or a
	// windowed one whose guest has stopped for good) actually exits.
	go func() {
		<-cpuDone
		requestShutdown()
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigc
		requestShutdown()
	}()

	if err := startAudioOutput(mixer); err != nil {
		log.Printf("fox32: audio output disabled: %v", err)
	}

	exitCode := 0
	if *headless {
		runHeadless(fabric, shutdown)
	} else {
		game := NewGame(mem, overlays, fabric, keyboard, mouse, shutdown)
		if err := RunWindowed(game, fmt.Sprintf("fox32 (scale %dx)", *scale)); err != nil {
			log.Printf("fox32: display error: %v", err)
			exitCode = 1
		}
	}

	requestShutdown()
	for _, ch := range audioChannels {
		ch.Close()
	}
	g.Wait()
	signal.Stop(sigc)
	os.Exit(exitCode)
}

// printBanner writes the startup status line, following the teacher's
// practice of announcing what was loaded before anything runs. It also
// reports whether standard error is a terminal (tty or non-tty), so a
// run launched from a script can be told apart from an interactive one.
func printBanner(romPath string, romBytes, ramMiB int, headless bool) {
	mode := "windowed"
	if headless {
		mode = "headless"
	}
	tty := "non-tty"
	if term.IsTerminal(int(os.Stderr.Fd())) {
		tty = "tty"
	}
	log.Printf("fox32: rom=%s (%d bytes) ram=%dMiB mode=%s stderr=%s", romPath, romBytes, ramMiB, mode, tty)
}

// headlessFrameInterval approximates the 60Hz vsync a windowed run gets
// from ebiten, so guest code polling for vsync behaves the same whether or
// not a window is open (spec.md §8's scenario tests run headless).
const headlessFrameInterval = time.Second / 60

// runHeadless pumps vsync without opening a window, for the scenario tests
// in spec.md §8 and for CI. It returns when shutdown fires.
func runHeadless(fabric *InterruptFabric, shutdown <-chan struct{}) {
	ticker := time.NewTicker(headlessFrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			fabric.PostRequest(VectorVsync)
		}
	}
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
)

func main() {
	var compile string
	var rom string
	var ticks int
	var keys string
	var seed int64
	var strict bool
	var dump bool
	var verbose bool

	flag.StringVar(&compile, "c", "", "assembly file to compile and run")
	flag.StringVar(&rom, "r", "", "program image to run")
	flag.IntVar(&ticks, "n", 1000, "Number of instructions to execute")
	flag.StringVar(&keys, "k", "", "Hex digits of the keys held down")
	flag.Int64Var(&seed, "seed", -1, "Random seed, or -1 for the wall clock")
	flag.BoolVar(&strict, "strict", false, "Stop on unknown opcodes")
	flag.BoolVar(&dump, "d", false, "Dump CPU state after running")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(rom) == 0) {
		log.Fatalf("%v: exactly one of -c or -r is required", os.Args[0])
	}

	emu := emulator.NewEmulator()
	emu.Verbose = verbose
	emu.Strict = strict

	if seed >= 0 {
		emu.Cpu.Random = cpu.NewRandom(uint64(seed))
	}

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		err = emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		image, err := os.ReadFile(rom)
		if err != nil {
			log.Fatalf("%v: %v", rom, err)
		}
		emu.Image = image
	}

	err := emu.Reset()
	if err != nil {
		log.Fatal(err)
	}

	for _, digit := range keys {
		key, err := strconv.ParseUint(string(digit), 16, 4)
		if err != nil {
			log.Fatalf("-k: %q is not a key", digit)
		}
		emu.Keypad.Press(uint8(key))
	}

	err = emu.Run(ticks)
	if err != nil {
		log.Print(err)
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		emu.Display.On = '█'
		emu.Display.Off = ' '
	}
	fmt.Print(emu.Display.String())

	if dump {
		fmt.Printf("ticks: %v\n", emu.Ticks())
		fmt.Printf("sound: %v\n", emu.Sounding())
		fmt.Print(emu.Cpu.String())
	}

	if err != nil {
		os.Exit(1)
	}
}

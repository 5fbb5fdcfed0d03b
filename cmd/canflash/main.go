// canflash is the host side of a firmware update: it asks the board to
// reboot into its bootloader over the maintenance console (answering the
// CMAC challenge when a key is configured), parses an Intel HEX image and
// streams it over the bus as address/data packet pairs.
package main

import (
	"bufio"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/LoveWonYoung/cancore/bootloader"
	"github.com/LoveWonYoung/cancore/can"
	"github.com/LoveWonYoung/cancore/config"
	"github.com/LoveWonYoung/cancore/console"
	"github.com/LoveWonYoung/cancore/driver"
	"github.com/LoveWonYoung/cancore/ids"
)

func main() {
	if len(os.Args) != 2 {
		slog.Error("usage: canflash <image.hex>")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error("open image", "err", err)
		os.Exit(1)
	}
	img, err := bootloader.LoadHex(f)
	f.Close()
	if err != nil {
		slog.Error("parse image", "err", err)
		os.Exit(1)
	}
	slog.Info("image loaded", "segments", len(img.Segments()), "bytes", img.Size())

	if cfg.SerialPort != "" {
		if err := enterBootloader(cfg); err != nil {
			slog.Error("bootloader entry", "err", err)
			os.Exit(1)
		}
		// Give the board time to strap BOOT0 and come back up.
		time.Sleep(500 * time.Millisecond)
	}

	fam := driver.Classic
	if cfg.Family == "fd" {
		fam = driver.FD
	}
	tr, err := driver.Open(cfg.Interface, fam)
	if err != nil {
		slog.Error("open transport", "err", err)
		os.Exit(1)
	}
	reg := can.NewRegistry(1)
	inst, err := can.New(reg, tr, can.Config{})
	if err != nil {
		slog.Error("bind instance", "err", err)
		os.Exit(1)
	}

	chunks := img.Chunks()
	for i, c := range chunks {
		addr := can.NewPacket(ids.FlashAddrPacketID, 0, 5)
		can.WriteInt[uint32](addr, ids.FlashAddrOffset, c.Address)
		can.WriteInt[uint8](addr, ids.FlashLenOffset, c.Len)
		data := can.NewPacket(ids.FlashDataPacketID, 0, c.Len)
		data.Data = c.Data

		if err := send(inst, addr); err != nil {
			slog.Error("send address", "chunk", i, "err", err)
			os.Exit(1)
		}
		if err := send(inst, data); err != nil {
			slog.Error("send data", "chunk", i, "err", err)
			os.Exit(1)
		}
	}
	slog.Info("flash complete", "chunks", len(chunks))
}

// send pushes a one-shot packet, waiting out transient mailbox pressure.
func send(inst *can.Instance, p *can.Packet) error {
	for {
		err := inst.AddTx(p)
		if !errors.Is(err, can.ErrBusy) {
			return err
		}
		time.Sleep(time.Millisecond)
	}
}

// enterBootloader drives the console side of the dfu sequence. When the
// board answers the dfu line with a hex challenge instead of the plain
// restart notice, the configured key is used to tag it.
func enterBootloader(cfg config.Tool) error {
	port, err := console.OpenSerial(cfg.SerialPort, cfg.SerialBaud)
	if err != nil {
		return err
	}
	defer port.Close()

	if _, err := port.Write([]byte(console.DFUCommand + "\n")); err != nil {
		return err
	}
	r := bufio.NewReader(port)
	line, err := r.ReadString('\n')
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	challenge, decErr := hex.DecodeString(line)
	if decErr != nil || len(challenge) != 16 {
		// Unauthenticated board, the line was the restart notice.
		slog.Info("board restarting", "reply", line)
		return nil
	}
	if cfg.FlashKey == "" {
		return errors.New("board demands authentication but FLASH_KEY is not set")
	}
	key, err := hex.DecodeString(cfg.FlashKey)
	if err != nil {
		return err
	}
	auth, err := bootloader.NewAuthenticator(key)
	if err != nil {
		return err
	}
	tag, err := auth.Tag(challenge)
	if err != nil {
		return err
	}
	if _, err := port.Write([]byte(hex.EncodeToString(tag) + "\n")); err != nil {
		return err
	}
	slog.Info("challenge answered")
	return nil
}

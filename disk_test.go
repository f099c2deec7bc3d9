package main

import "testing"

func TestDiskControllerReadSector(t *testing.T) {
	fabric := NewInterruptFabric()
	mem := NewMemory(1<<16, nil, 16, fabric)
	disk := NewDiskController(mem, fabric)

	img := newMemImage(4)
	for sector := 0; sector < 4; sector++ {
		buf := make([]byte, SectorSize)
		for i := range buf {
			buf[i] = byte((sector*SectorSize + i) % 256)
		}
		if _, err := img.WriteAt(buf, int64(sector)*SectorSize); err != nil {
			t.Fatalf("priming image: %v", err)
		}
	}
	disk.Insert(0, img)

	const bufferPtr = 0x4000
	disk.MMIOWrite(DiskSlotReg, Width32, 0)
	disk.MMIOWrite(DiskSectorReg, Width32, 2)
	disk.MMIOWrite(DiskBufferPtrReg, Width32, bufferPtr)
	disk.MMIOWrite(DiskSectorCountReg, Width32, 1)
	disk.MMIOWrite(DiskCommandReg, Width32, DiskCommandRead)

	if status := disk.MMIORead(DiskStatusReg, Width32); status != 0 {
		t.Fatalf("status = %#x, want 0 (no error)", status)
	}

	got, ok := mem.ReadBytes(bufferPtr, SectorSize)
	if !ok {
		t.Fatal("ReadBytes failed")
	}
	for i := range got {
		want := byte((2*SectorSize + i) % 256)
		if got[i] != want {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], want)
		}
	}

	i, ok := fabric.TryRecv()
	if !ok || i.vector != VectorDiskComplete {
		t.Fatalf("expected a disk-completion request, got %+v ok=%v", i, ok)
	}
}

func TestDiskControllerWriteSector(t *testing.T) {
	fabric := NewInterruptFabric()
	mem := NewMemory(1<<16, nil, 16, fabric)
	disk := NewDiskController(mem, fabric)
	img := newMemImage(2)
	disk.Insert(0, img)

	const bufferPtr = 0x2000
	data := make([]byte, SectorSize)
	for i := range data {
		data[i] = byte(i)
	}
	mem.WriteBytes(bufferPtr, data)

	disk.MMIOWrite(DiskSlotReg, Width32, 0)
	disk.MMIOWrite(DiskSectorReg, Width32, 1)
	disk.MMIOWrite(DiskBufferPtrReg, Width32, bufferPtr)
	disk.MMIOWrite(DiskSectorCountReg, Width32, 1)
	disk.MMIOWrite(DiskCommandReg, Width32, DiskCommandWrite)

	got := make([]byte, SectorSize)
	if _, err := img.ReadAt(got, SectorSize); err != nil {
		t.Fatalf("reading back written sector: %v", err)
	}
	for i := range got {
		if got[i] != byte(i) {
			t.Fatalf("byte %d = %#x, want %#x", i, got[i], byte(i))
		}
	}
}

func TestDiskControllerUnmountedSlotErrors(t *testing.T) {
	fabric := NewInterruptFabric()
	mem := NewMemory(1<<16, nil, 16, fabric)
	disk := NewDiskController(mem, fabric)

	disk.MMIOWrite(DiskSlotReg, Width32, 3)
	disk.MMIOWrite(DiskSectorReg, Width32, 0)
	disk.MMIOWrite(DiskBufferPtrReg, Width32, 0x1000)
	disk.MMIOWrite(DiskSectorCountReg, Width32, 1)
	disk.MMIOWrite(DiskCommandReg, Width32, DiskCommandRead)

	if status := disk.MMIORead(DiskStatusReg, Width32); status&DiskStatusError == 0 {
		t.Fatalf("status = %#x, want the error bit set for an empty slot", status)
	}

	if _, ok := fabric.TryRecv(); !ok {
		t.Fatal("a completion interrupt must still fire on a failed command")
	}
}

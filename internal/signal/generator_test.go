package signal

import (
	"context"
	"testing"
)

func TestPulseSourceDeterministic(t *testing.T) {
	opts := PulseOptions{SampleRateHz: 10, RateBPM: 72, NoiseAmplitude: 5, Seed: 42}
	a := NewPulseSource(opts)
	b := NewPulseSource(opts)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		va, _ := a.Next(ctx)
		vb, _ := b.Next(ctx)
		if va != vb {
			t.Fatalf("相同 seed 应产生相同序列, 第 %d 个样本 %v != %v", i, va, vb)
		}
	}
}

func TestPulseSourceRange(t *testing.T) {
	src := NewPulseSource(PulseOptions{
		SampleRateHz:   10,
		RateBPM:        72,
		BaseLevel:      175,
		Amplitude:      20,
		NoiseAmplitude: 5,
		Seed:           1,
	})

	ctx := context.Background()
	for i := 0; i < 300; i++ {
		v, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next 不应报错: %v", err)
		}
		if v < 150 || v > 200 {
			t.Fatalf("样本 %d 超出预期亮度范围: %v", i, v)
		}
	}
}

func TestDemoSourceRange(t *testing.T) {
	src := NewDemoSource(10, 7)
	ctx := context.Background()
	for i := 0; i < 300; i++ {
		v, err := src.Next(ctx)
		if err != nil {
			t.Fatalf("Next 不应报错: %v", err)
		}
		if v < 130 || v > 220 {
			t.Fatalf("demo 波形样本 %d 超出范围: %v", i, v)
		}
	}
}

func TestSourcesHonourContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPulseSource(PulseOptions{}).Next(ctx); err == nil {
		t.Fatal("取消的 context 应返回错误")
	}
	if _, err := NewDemoSource(10, 0).Next(ctx); err == nil {
		t.Fatal("取消的 context 应返回错误")
	}
}

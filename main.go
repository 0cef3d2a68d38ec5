package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"ico-convert/config"
	"ico-convert/export"
	"ico-convert/ico"
	"ico-convert/raster"
	"ico-convert/source"
)

func main() {
	// 定义命令行参数
	var inputPath string
	var outputName string
	var icoName string
	var icnsName string
	var hicolorDir string
	var sizesArg string
	var filterName string
	var svgSize int
	var configPath string
	var inspectPath string
	var serve bool

	flag.StringVar(&inputPath, "i", "input.png", "输入的图片路径 (png/jpeg/gif/bmp/tiff/svg)")
	flag.StringVar(&outputName, "o", "output.png", "hicolor 目录中的PNG文件名")
	flag.StringVar(&icoName, "w", "app.ico", "生成的ICO文件名")
	flag.StringVar(&icnsName, "m", "", "生成的ICNS文件名, 为空则跳过")
	flag.StringVar(&hicolorDir, "hicolor", "", "生成Linux hicolor图标的目录, 为空则跳过")
	flag.StringVar(&sizesArg, "s", "", "ICO尺寸, 用逗号分隔 (默认取配置文件)")
	flag.StringVar(&filterName, "filter", "", "缩放算法: box, lanczos, linear, nearest, catmullrom")
	flag.IntVar(&svgSize, "svg-size", 0, "SVG输入的渲染尺寸")
	flag.StringVar(&configPath, "config", "", "TOML配置文件路径")
	flag.StringVar(&inspectPath, "inspect", "", "打印已有ICO文件的目录信息")
	flag.BoolVar(&serve, "serve", false, "启动HTTP服务")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if serve {
		if err := runServer(cfg); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
		return
	}

	if inspectPath != "" {
		if err := inspect(inspectPath); err != nil {
			log.Fatalf("failed to inspect %s: %v", inspectPath, err)
		}
		return
	}

	var sizes ico.SizeSet
	if sizesArg != "" {
		sizes, err = ico.ParseSizes(sizesArg)
	} else {
		sizes, err = cfg.SizeSet()
	}
	if err != nil {
		log.Fatalf("invalid sizes %q: %v", sizesArg, err)
	}
	if filterName == "" {
		filterName = cfg.Icon.Filter
	}
	filter, err := raster.ParseFilter(filterName)
	if err != nil {
		log.Fatal(err)
	}
	if svgSize == 0 {
		svgSize = cfg.Icon.SVGSize
	}

	// 读取输入的图片
	srcImage, kind, err := source.Open(inputPath, source.Options{SVGSize: svgSize, MaxPixels: cfg.Icon.MaxPixels})
	if err != nil {
		log.Fatalf("failed to load %s: %v", inputPath, err)
	}
	log.Printf("loaded %s (%s, %dx%d)", inputPath, kind, srcImage.Bounds().Dx(), srcImage.Bounds().Dy())

	resampler := raster.New(filter)

	// *******   生成Linux hicolor  *******
	if hicolorDir != "" {
		paths, err := export.WriteHicolor(hicolorDir, outputName, srcImage, sizes, resampler)
		if err != nil {
			log.Fatalf("failed to write hicolor icons: %v", err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
	}

	// *******   制作windows ico  *******
	data, err := ico.NewEncoder(resampler).Encode(context.Background(), srcImage, sizes)
	if err != nil {
		log.Fatalf("failed to encode ico: %v", err)
	}
	if err := os.WriteFile(icoName, data, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", icoName, err)
	}
	fmt.Printf("%s: %d frames [%s], %d bytes\n", icoName, len(sizes), sizes, len(data))

	// *******   制作macos icns  *******
	if icnsName != "" {
		icnsFile, err := os.Create(icnsName)
		if err != nil {
			log.Fatalf("failed to create %s: %v", icnsName, err)
		}
		err = export.EncodeICNS(icnsFile, srcImage)
		if cerr := icnsFile.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			log.Fatalf("failed to write %s: %v", icnsName, err)
		}
		fmt.Println(icnsName)
	}
	fmt.Println("Conversion completed.")
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dir, err := ico.ParseDirectory(data)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d frames, %d bytes\n", path, len(dir.Entries), len(data))
	for i, e := range dir.Entries {
		format := "bmp"
		if ico.IsPNG(dir.Frame(data, i)) {
			format = "png"
		}
		w, h := e.Dims()
		fmt.Printf("  #%d %3dx%-3d %2dbpp %s %8d bytes @ %d\n",
			i, w, h, e.BitsPerPixel, format, e.Length, e.Offset)
	}
	return nil
}

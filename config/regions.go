package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Region is one scraping partition: the district label recorded on every
// listing fetched from it, and the listing directory URL pages are built from.
type Region struct {
	Label string `yaml:"label" validate:"required"`
	URL   string `yaml:"url" validate:"required,url"`
}

type regionsFile struct {
	Regions []Region `yaml:"regions"`
}

// DefaultRegions returns the Chengdu districts in scraping order.
func DefaultRegions() []Region {
	return []Region{
		{Label: "锦江", URL: "https://cd.lianjia.com/ershoufang/jinjiang/"},
		{Label: "青羊", URL: "https://cd.lianjia.com/ershoufang/qingyang/"},
		{Label: "武侯", URL: "https://cd.lianjia.com/ershoufang/wuhou/"},
		{Label: "高新", URL: "https://cd.lianjia.com/ershoufang/gaoxin7/"},
		{Label: "成华", URL: "https://cd.lianjia.com/ershoufang/chenghua/"},
		{Label: "金牛", URL: "https://cd.lianjia.com/ershoufang/jinniu/"},
		{Label: "天府新区", URL: "https://cd.lianjia.com/ershoufang/tianfuxinqu/"},
		{Label: "高新西", URL: "https://cd.lianjia.com/ershoufang/gaoxinxi/"},
		{Label: "双流", URL: "https://cd.lianjia.com/ershoufang/shuangliu/"},
		{Label: "温江", URL: "https://cd.lianjia.com/ershoufang/wenjiang/"},
		{Label: "郫都", URL: "https://cd.lianjia.com/ershoufang/pidou/"},
		{Label: "龙泉驿", URL: "https://cd.lianjia.com/ershoufang/longquanyi/"},
		{Label: "新都", URL: "https://cd.lianjia.com/ershoufang/xindou/"},
		{Label: "都江堰", URL: "https://cd.lianjia.com/ershoufang/doujiangyan/"},
		{Label: "青白江", URL: "https://cd.lianjia.com/ershoufang/qingbaijiang/"},
	}
}

// LoadRegions reads an ordered region list from a YAML file of the form
//
//	regions:
//	  - label: 武侯
//	    url: https://cd.lianjia.com/ershoufang/wuhou/
func LoadRegions(path string) ([]Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read regions file %q: %w", path, err)
	}

	var f regionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse regions file %q: %w", path, err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("config: regions file %q lists no regions", path)
	}
	return f.Regions, nil
}

package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const WeatherToolName = "get_weather"

const (
	DateToday         = "today"
	DateTomorrow      = "tomorrow"
	DateAfterTomorrow = "after_tomorrow"
)

// CityCodes maps supported city names to weather.com.cn station codes.
var CityCodes = map[string]string{
	"北京": "101010100", "上海": "101020100", "广州": "101280101",
	"深圳": "101280601", "杭州": "101210101", "成都": "101270101",
	"重庆": "101040100", "武汉": "101200101", "南京": "101190101",
	"西安": "101110101", "苏州": "101190401", "天津": "101030100",
	"长沙": "101250101", "青岛": "101120201", "大连": "101070201",
	"宁波": "101210401", "厦门": "101230201", "郑州": "101180101",
	"济南": "101120101",
}

var dayIndex = map[string]int{
	DateToday:         0,
	DateTomorrow:      1,
	DateAfterTomorrow: 2,
}

type WeatherConfig struct {
	// Type selects the backend: "mock" or "weather_cn".
	Type    string
	Timeout time.Duration
}

// WeatherTool answers "location,date" lookups with a free-text description.
// The weather_cn backend scrapes an HTML page with regular expressions; the
// output shape is only as stable as that page, which is why the mock backend
// exists for tests and offline runs.
type WeatherTool struct {
	cfg    WeatherConfig
	client *http.Client
}

func NewWeatherTool(cfg WeatherConfig) *WeatherTool {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &WeatherTool{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (w *WeatherTool) Name() string {
	return WeatherToolName
}

func (w *WeatherTool) Description() string {
	return "查询指定地点的天气情况。输入格式：地点,日期。日期可选值：today/tomorrow/after_tomorrow"
}

func (w *WeatherTool) Invoke(ctx context.Context, input string) (string, error) {
	location, date, errMsg := parseInput(input)
	if errMsg != "" {
		return errMsg, nil
	}
	if _, ok := CityCodes[location]; !ok {
		return fmt.Sprintf("暂不支持查询该地区，当前支持的城市: %s", strings.Join(supportedCities(), ", ")), nil
	}
	logutil.GetLogger(ctx).Info("weather lookup", zap.String("location", location), zap.String("date", date))
	if w.cfg.Type == "weather_cn" {
		return w.fetchWeatherCN(ctx, location, date)
	}
	return mockWeather(location, date), nil
}

func parseInput(input string) (location, date, errMsg string) {
	if input == "" || !strings.Contains(input, ",") {
		return "", "", "参数错误：请提供正确的查询格式，如'北京,today'"
	}
	parts := strings.SplitN(input, ",", 2)
	location = strings.TrimSpace(parts[0])
	date = strings.ToLower(strings.TrimSpace(parts[1]))
	if location == "" {
		return "", "", "参数错误：地点不能为空"
	}
	if _, ok := dayIndex[date]; !ok {
		return "", "", fmt.Sprintf("参数错误：日期必须是 %s/%s/%s 之一", DateToday, DateTomorrow, DateAfterTomorrow)
	}
	return location, date, ""
}

func supportedCities() []string {
	cities := make([]string, 0, len(CityCodes))
	for city := range CityCodes {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities
}

var (
	dayBlockRe  = regexp.MustCompile(`(?s)<li class="sky[^"]*">(.*?)</li>`)
	dayTitleRe  = regexp.MustCompile(`<h1>([^<]+)</h1>`)
	conditionRe = regexp.MustCompile(`class="wea"[^>]*>([^<]+)<`)
	tempHighRe  = regexp.MustCompile(`<span>(-?\d+)</span>`)
	tempLowRe   = regexp.MustCompile(`<i>(-?\d+)℃?</i>`)
	windRe      = regexp.MustCompile(`class="win">.*?<i>([^<]+)</i>`)
)

func (w *WeatherTool) fetchWeatherCN(ctx context.Context, location, date string) (string, error) {
	url := fmt.Sprintf("http://www.weather.com.cn/weather/%s.shtml", CityCodes[location])
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request weather data: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather source returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	blocks := dayBlockRe.FindAllStringSubmatch(string(body), -1)
	idx := dayIndex[date]
	if len(blocks) <= idx {
		return "", fmt.Errorf("解析天气数据失败：找不到天气信息")
	}
	block := blocks[idx][1]

	dayTitle := firstGroup(dayTitleRe, block)
	condition := strings.TrimSpace(firstGroup(conditionRe, block))
	high := firstGroup(tempHighRe, block)
	low := firstGroup(tempLowRe, block)
	wind := strings.TrimSpace(firstGroup(windRe, block))

	temp := "温度未知"
	switch {
	case high != "" && low != "":
		temp = fmt.Sprintf("温度%s~%s℃", high, low)
	case high != "":
		temp = fmt.Sprintf("温度%s℃", high)
	case low != "":
		temp = fmt.Sprintf("温度%s℃", low)
	}
	if condition == "" {
		condition = "未知"
	}
	return fmt.Sprintf("%s%s天气：%s，%s，%s", location, dayTitle, condition, temp, wind), nil
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

var mockConditions = map[string][3]string{
	"北京": {"晴", "多云", "阴"},
	"上海": {"阴", "雨", "多云"},
	"广州": {"晴", "晴", "多云"},
	"深圳": {"多云", "雨", "晴"},
	"杭州": {"雨", "阴", "晴"},
	"成都": {"多云", "晴", "阴"},
}

var mockTemps = map[string][3][2]int{
	"北京": {{25, 13}, {22, 11}, {24, 12}},
	"上海": {{20, 14}, {19, 13}, {21, 15}},
	"广州": {{30, 22}, {31, 23}, {29, 22}},
	"深圳": {{28, 22}, {26, 21}, {29, 23}},
	"杭州": {{19, 12}, {21, 13}, {23, 14}},
	"成都": {{22, 14}, {24, 15}, {21, 13}},
}

func mockWeather(location, date string) string {
	idx := dayIndex[date]
	conds, ok := mockConditions[location]
	if !ok {
		return fmt.Sprintf("%s天气：未知，数据暂缺", location)
	}
	temps := mockTemps[location]
	return fmt.Sprintf("%s天气：%s，温度%d~%d℃，西南风<3级",
		location, conds[idx], temps[idx][0], temps[idx][1])
}

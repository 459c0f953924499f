// Package suggest serves curated starter questions so a fresh install has
// something to tap on before any history exists.
package suggest

import (
	"math/rand"
	"sync"
	"time"
)

// DefaultCount is the number of suggestions returned when none is requested.
const DefaultCount = 3

// Category names accepted by Random. Anything else selects the full pool.
const (
	CategoryScience    = "science"
	CategoryHistory    = "history"
	CategoryTechnology = "technology"
	CategoryAll        = "all"
)

var scienceQuestions = []string{
	"为什么天空是蓝色的？",
	"恐龙是怎么灭绝的？",
	"植物是怎么长大的？",
	"为什么会有四季变化？",
	"彩虹是怎么形成的？",
	"为什么海水是咸的？",
	"为什么地球是圆的？",
	"为什么我们会打嗝？",
	"为什么有些人会打呼噜？",
	"为什么我们会做梦？",
	"为什么我们的指纹都不一样？",
	"为什么猫咪会用舌头洗脸？",
	"为什么下雨时会有雷声？",
	"为什么我们能在镜子里看到自己？",
	"为什么肥皂泡是圆的？",
	"为什么我们会打喷嚏？",
	"为什么有些动物会冬眠？",
	"为什么我们的头发会变白？",
	"为什么冰会融化？",
	"为什么我们能闻到香味？",
}

var historyQuestions = []string{
	"古埃及金字塔是如何建造的？",
	"长城是什么时候建造的？",
	"谁发明了印刷术？",
	"恐龙在地球上生活了多久？",
	"古代小朋友玩什么玩具？",
	"为什么我们要过春节？",
	"第一辆汽车是什么样子的？",
	"古代人是怎么点灯的？",
	"为什么我们要上学？",
	"第一部电影是什么样的？",
	"古代人是怎么寄信的？",
	"为什么有些城市有城墙？",
	"中国的指南针是怎么发明的？",
	"第一架飞机是怎么飞起来的？",
	"古代人是怎么记时间的？",
}

var technologyQuestions = []string{
	"机器人是怎么动起来的？",
	"手机是怎么知道我在说话的？",
	"电脑是怎么记住东西的？",
	"为什么飞机能飞在天上？",
	"电是怎么到我们家的？",
	"为什么冰箱能让东西变冷？",
	"太阳能是怎么变成电的？",
	"为什么我们能在电视上看到人说话？",
	"互联网是怎么让我们看到图片的？",
	"为什么GPS能知道我们在哪里？",
	"为什么收音机能听到声音？",
	"为什么灯泡会发光？",
	"为什么我们能用手机拍照？",
	"为什么电梯能上下移动？",
	"为什么我们能在水下呼吸？",
}

// Pool hands out random questions from the curated category lists.
// Safe for concurrent use; rand sources are not, so rng access is locked.
type Pool struct {
	mu  sync.Mutex
	rng *rand.Rand
	all []string
}

// NewPool creates a pool seeded from the current time.
func NewPool() *Pool {
	return NewPoolWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewPoolWithRand creates a pool using the provided randomness source.
func NewPoolWithRand(rng *rand.Rand) *Pool {
	all := make([]string, 0, len(scienceQuestions)+len(historyQuestions)+len(technologyQuestions))
	all = append(all, scienceQuestions...)
	all = append(all, historyQuestions...)
	all = append(all, technologyQuestions...)
	return &Pool{rng: rng, all: all}
}

// Random returns up to count random questions from the named category. An
// unknown or empty category draws from all categories combined.
func (p *Pool) Random(count int, category string) []string {
	if count <= 0 {
		count = DefaultCount
	}

	var pool []string
	switch category {
	case CategoryScience:
		pool = scienceQuestions
	case CategoryHistory:
		pool = historyQuestions
	case CategoryTechnology:
		pool = technologyQuestions
	default:
		pool = p.all
	}

	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	p.mu.Lock()
	p.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	p.mu.Unlock()

	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled
}

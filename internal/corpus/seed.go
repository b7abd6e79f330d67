package corpus

import "github.com/luofeng-dev/jielong-engine/internal/domain"

// StarterPoems is a small built-in corpus of well-known poems so a fresh
// database can serve battles immediately. Production deployments load a
// full corpus through store.PoemRepo instead.
var StarterPoems = []domain.Poem{
	{Title: "登鹳雀楼", Author: "王之涣", Content: "白日依山尽，黄河入海流。欲穷千里目，更上一层楼。", Difficulty: 1},
	{Title: "静夜思", Author: "李白", Content: "床前明月光，疑是地上霜。举头望明月，低头思故乡。", Difficulty: 1},
	{Title: "春晓", Author: "孟浩然", Content: "春眠不觉晓，处处闻啼鸟。夜来风雨声，花落知多少。", Difficulty: 1},
	{Title: "相思", Author: "王维", Content: "红豆生南国，春来发几枝。愿君多采撷，此物最相思。", Difficulty: 1},
	{Title: "望庐山瀑布", Author: "李白", Content: "日照香炉生紫烟，遥看瀑布挂前川。飞流直下三千尺，疑是银河落九天。", Difficulty: 1},
	{Title: "送杜少府之任蜀州", Author: "王勃", Content: "城阙辅三秦，风烟望五津。与君离别意，同是宦游人。海内存知己，天涯若比邻。无为在歧路，儿女共沾巾。", Difficulty: 2},
	{Title: "望月怀远", Author: "张九龄", Content: "海上生明月，天涯共此时。情人怨遥夜，竟夕起相思。", Difficulty: 2},
	{Title: "观刈麦", Author: "白居易", Content: "田家少闲月，五月人倍忙。夜来南风起，小麦覆陇黄。", Difficulty: 2},
	{Title: "饮湖上初晴后雨", Author: "苏轼", Content: "水光潋滟晴方好，山色空蒙雨亦奇。欲把西湖比西子，淡妆浓抹总相宜。", Difficulty: 2},
	{Title: "游子吟", Author: "孟郊", Content: "慈母手中线，游子身上衣。临行密密缝，意恐迟迟归。谁言寸草心，报得三春晖。", Difficulty: 1},
}

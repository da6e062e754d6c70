package palette

import biostream "github.com/bigyambat/BioStream"

// Category names, in palette order.
const (
	CategoryDataSources     = "Data Sources"
	CategoryTransformations = "Data Transformations"
	CategoryRScripts        = "R Scripts"
	CategoryVisualizations  = "Visualizations"
	CategoryControlFlow     = "Control Flow"
)

var defaultTemplates = []Template{
	{
		ID:          "csv-reader",
		Type:        biostream.NodeDataSource,
		Label:       "CSV Reader",
		Description: "Read data from CSV file",
		Category:    CategoryDataSources,
		Icon:        "📄",
		DefaultCode: `data <- read.csv("input.csv")`,
		DefaultParams: biostream.Params{
			"file_path": "input.csv",
			"header":    true,
			"sep":       ",",
		},
	},
	{
		ID:          "excel-reader",
		Type:        biostream.NodeDataSource,
		Label:       "Excel Reader",
		Description: "Read data from Excel file",
		Category:    CategoryDataSources,
		Icon:        "📊",
		DefaultCode: "library(readxl)\ndata <- read_excel(\"input.xlsx\")",
		DefaultParams: biostream.Params{
			"file_path": "input.xlsx",
			"sheet":     1.0,
		},
	},
	{
		ID:          "db-query",
		Type:        biostream.NodeDataSource,
		Label:       "Database Query",
		Description: "Execute SQL query on database",
		Category:    CategoryDataSources,
		Icon:        "🗄️",
		DefaultCode: "library(DBI)\ncon <- dbConnect(RSQLite::SQLite(), \"database.db\")\ndata <- dbGetQuery(con, \"SELECT * FROM table\")",
		DefaultParams: biostream.Params{
			"connection_string": "sqlite://database.db",
			"query":             "SELECT * FROM table",
		},
	},
	{
		ID:          "filter-data",
		Type:        biostream.NodeTransform,
		Label:       "Filter Data",
		Description: "Filter rows based on conditions",
		Category:    CategoryTransformations,
		Icon:        "🔍",
		DefaultCode: "filtered_data <- data[data$column > 0, ]",
		DefaultParams: biostream.Params{
			"column":   "value",
			"operator": ">",
			"value":    0.0,
		},
	},
	{
		ID:          "select-columns",
		Type:        biostream.NodeTransform,
		Label:       "Select Columns",
		Description: "Select specific columns from dataset",
		Category:    CategoryTransformations,
		Icon:        "📋",
		DefaultCode: `selected_data <- data[, c("col1", "col2", "col3")]`,
		DefaultParams: biostream.Params{
			"columns": "col1,col2,col3",
		},
	},
	{
		ID:          "group-by",
		Type:        biostream.NodeTransform,
		Label:       "Group By",
		Description: "Group data by specified columns",
		Category:    CategoryTransformations,
		Icon:        "📊",
		DefaultCode: "library(dplyr)\ngrouped_data <- data %>% group_by(group_column)",
		DefaultParams: biostream.Params{
			"group_columns": "category,region",
		},
	},
	{
		ID:          "custom-r-script",
		Type:        biostream.NodeRScript,
		Label:       "Custom R Script",
		Description: "Execute custom R code",
		Category:    CategoryRScripts,
		Icon:        "📝",
		DefaultCode: "# Your R code here\ndata <- read.csv(\"input.csv\")\nresult <- summary(data)\nwrite.csv(result, \"output.csv\")",
		DefaultParams: biostream.Params{
			"script_name": "custom_script.R",
			"timeout":     300.0,
		},
	},
	{
		ID:          "stat-analysis",
		Type:        biostream.NodeRScript,
		Label:       "Statistical Analysis",
		Description: "Perform statistical analysis",
		Category:    CategoryRScripts,
		Icon:        "📈",
		DefaultCode: "library(stats)\nmodel <- lm(y ~ x, data=data)\nsummary(model)",
		DefaultParams: biostream.Params{
			"dependent_var":    "y",
			"independent_vars": "x1,x2,x3",
			"method":           "lm",
		},
	},
	{
		ID:          "ml-model",
		Type:        biostream.NodeRScript,
		Label:       "Machine Learning",
		Description: "Train machine learning model",
		Category:    CategoryRScripts,
		Icon:        "🤖",
		DefaultCode: "library(randomForest)\nmodel <- randomForest(target ~ ., data=train_data)\npredictions <- predict(model, test_data)",
		DefaultParams: biostream.Params{
			"algorithm":     "randomForest",
			"target_column": "target",
			"test_size":     0.2,
		},
	},
	{
		ID:          "scatter-plot",
		Type:        biostream.NodeVisualization,
		Label:       "Scatter Plot",
		Description: "Create scatter plot",
		Category:    CategoryVisualizations,
		Icon:        "📊",
		DefaultCode: "library(ggplot2)\nggplot(data, aes(x=x, y=y)) + geom_point() + theme_minimal()",
		DefaultParams: biostream.Params{
			"x_column":     "x",
			"y_column":     "y",
			"color_column": "",
			"size_column":  "",
		},
	},
	{
		ID:          "bar-chart",
		Type:        biostream.NodeVisualization,
		Label:       "Bar Chart",
		Description: "Create bar chart",
		Category:    CategoryVisualizations,
		Icon:        "📊",
		DefaultCode: "library(ggplot2)\nggplot(data, aes(x=category, y=value)) + geom_bar(stat=\"identity\") + theme_minimal()",
		DefaultParams: biostream.Params{
			"x_column":    "category",
			"y_column":    "value",
			"fill_column": "",
		},
	},
	{
		ID:          "line-plot",
		Type:        biostream.NodeVisualization,
		Label:       "Line Plot",
		Description: "Create line plot",
		Category:    CategoryVisualizations,
		Icon:        "📈",
		DefaultCode: "library(ggplot2)\nggplot(data, aes(x=time, y=value)) + geom_line() + theme_minimal()",
		DefaultParams: biostream.Params{
			"x_column":     "time",
			"y_column":     "value",
			"group_column": "",
		},
	},
	{
		ID:          "conditional-branch",
		Type:        biostream.NodeControl,
		Label:       "Conditional Branch",
		Description: "Conditional execution based on data",
		Category:    CategoryControlFlow,
		Icon:        "🔀",
		DefaultCode: "if (condition) {\n  # true branch\n} else {\n  # false branch\n}",
		DefaultParams: biostream.Params{
			"condition":    "nrow(data) > 1000",
			"true_branch":  "heavy_processing",
			"false_branch": "light_processing",
		},
	},
	{
		ID:          "loop",
		Type:        biostream.NodeControl,
		Label:       "Loop",
		Description: "Iterate over data or conditions",
		Category:    CategoryControlFlow,
		Icon:        "🔄",
		DefaultCode: "for (i in 1:nrow(data)) {\n  # process each row\n  result[i] <- process_row(data[i, ])\n}",
		DefaultParams: biostream.Params{
			"loop_type": "for",
			"iterator":  "i",
			"range":     "1:nrow(data)",
		},
	},
	{
		ID:          "parallel-execution",
		Type:        biostream.NodeControl,
		Label:       "Parallel Execution",
		Description: "Execute tasks in parallel",
		Category:    CategoryControlFlow,
		Icon:        "⚡",
		DefaultCode: "library(parallel)\ncl <- makeCluster(4)\nresults <- parLapply(cl, data_list, process_function)\nstopCluster(cl)",
		DefaultParams: biostream.Params{
			"num_cores":  4.0,
			"chunk_size": 100.0,
		},
	},
}

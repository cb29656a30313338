package dashboard

const (
	siteTitle    = "Visualizing Water Usage in an Evolving Climate"
	siteSubtitle = "Bringing water usage discourse closer to home with accessible, contextualized, locally relevant information."
)

var aboutParagraphs = []string{
	"Climate change has emerged as a pressing global challenge, with significant implications for water resources. " +
		"As temperatures rise and climates become increasingly erratic and unpredictable, the task of monitoring and " +
		"managing water usage grows more complex. By leveraging machine learning, we can unlock valuable insights in " +
		"relation to water consumption patterns that empower policymakers, water resource managers, and communities to " +
		"make informed decisions, develop adaptation strategies, and implement proactive measures to sustainably manage " +
		"our water resources in the face of an uncertain climate future.",
	"The objective of this project is to use machine learning to build a clustering model to better understand, and be " +
		"able to compare and contrast, state-county level water supply and consumption. By providing locally-relevant " +
		"information, consumers of this information might better understand their own water consumption, identifying areas " +
		"for improvement and efficiency, and industries in their local area may adjust consumption patterns through awareness " +
		"and advocacy.",
	"To complete this analysis, several KMeans clustering unsupervised models were built with the aim that consumers at " +
		"the micro-level (i.e., individuals) and macro-level (e.g., policymakers, water resource managers, agricultural " +
		"authorities, environmental agencies, water conservation groups, etc.) will explore and examine counties of like " +
		"consumption patterns to their own, and subsequently gauge the feasibility and sustainability of those patterns. " +
		"Multi-year temperature and drought data was also modeled using time-series analysis to gain an understanding of " +
		"long-term climate patterns, abrupt climate-related events, trends and variability in temperature and drought " +
		"conditions, and potential insights into future climate scenarios.",
	"Our analysis and applications showed that there is widespread variation in water supply and consumption in many " +
		"different areas (e.g., industrial, livestock, aquaculture, mining, irrigation, thermoelectric), as well as in " +
		"county-level temperature and drought changes. Our models showed that sufficient similarities exist between counties " +
		"to enable clustering and categorization of counties.",
	"We have created these visualizations, models, and dashboards using numerical data from the following sources:",
}

var aboutSources = []Link{
	{Label: "Geographical data", URL: "https://www.weather.gov/gis/Counties"},
	{Label: "Estimated water usage data", URL: "https://www.sciencebase.gov/catalog/item/get/5af3311be4b0da30c1b245d8"},
	{Label: "Temperature data", URL: "https://www.nature.com/articles/s41597-022-01405-3/tables/4"},
	{Label: "Drought data", URL: "https://droughtmonitor.unl.edu/DmData/DataDownload/ComprehensiveStatistics.aspx"},
	{Label: "Income data", URL: "https://data.world/tylerudite/2015-median-income-by-county"},
}

var edaParagraphs = []string{
	"We began our analysis with a high-level exploration of the combined data file, including describing all " +
		"numeric variables, visualizing the distribution of water withdrawal and consumption at various levels of " +
		"granularity (e.g., irrigation [crops vs. golf fields], livestock, aquaculture, mining, thermoelectric " +
		"[once through vs. recirculating]), and looking at correlations between different temperatures and drought " +
		"conditions.",
	"Following our preliminary investigation, we explored county level correlations in our combined dataset using " +
		"shapefiles. Each column was mapped individually onto its own graphic. For example, we observed that the North " +
		"is colder than the South, Napa Valley draws more water for irrigation than most areas, large cities use larger " +
		"amounts of drinking water, and the southwest has more drought days than the rest of the country.",
}

const (
	temperatureHeading = "Temperature Trends by County"
	temperatureNote    = "Area charts depicting monthly temperature ranges (min-mean-max) are provided, along with " +
		"annual averages, indexed against the first year in the date range. This helps keep track of longer term trends."
	droughtHeading = "Drought Trends by County"
	droughtNote    = "As the drought categories are sequential (Moderate > Severe > Extreme > Exceptional), values are " +
		"calculated as the percent of population experiencing at least the specified drought condition. " +
		"Areas tend to enter and exit drought conditions sequentially."
	clustersIntro = "Clustering can be used to explore connections and uncover correlations " +
		"that are not easily seen in a two-dimensional map."
)

// overviewFields are the county facts listed above a cluster chart.
var overviewFields = []struct {
	column string
	label  string
	unit   string
}{
	{"population", "Total population", ""},
	{"ps_wtotl", "Public supply total withdrawals", "million gallons per day"},
	{"do_psdel", "Domestic deliveries from public supply", "million gallons per day"},
	{"ir_wfrto", "Total fresh water withdrawals for irrigation", "million gallons per day"},
	{"ir_recww", "Reclaimed wastewater for crop irrigation", "million gallons per day"},
	{"to_wtotl", "Total withdrawals", "million gallons per day"},
	{"median_household_income", "Median household income", "$"},
}
